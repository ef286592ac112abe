package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"genrelab/internal/config"
	"genrelab/internal/db"
	"genrelab/internal/model"
)

// newTestDB opens a private in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := db.Open(config.DriverSQLite, dsn)
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

func createAccount(t *testing.T, repo AccountRepository, email string) *model.Account {
	t.Helper()
	account := &model.Account{Email: email, PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, repo.Create(context.Background(), account))
	return account
}

func TestAccountRepository_FindByEmail(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx := context.Background()
	created := createAccount(t, repo, "Case@example.com")

	found, err := repo.FindByEmail(ctx, "Case@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, 0, found.FailedLoginCount)
	assert.Nil(t, found.LockedUntil)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	createAccount(t, repo, "dup@example.com")

	err := repo.Create(context.Background(), &model.Account{Email: "dup@example.com", PasswordHash: "x", Role: model.RoleUser})
	assert.Error(t, err)
}

func TestAccountRepository_LoginStateInTransaction(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx := context.Background()
	account := createAccount(t, repo, "lock@example.com")
	until := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Second)

	err := repo.WithTransaction(ctx, func(ctx context.Context, tx AccountRepository) error {
		locked, err := tx.FindByIDForUpdate(ctx, account.ID)
		if err != nil {
			return err
		}
		return tx.UpdateLoginState(ctx, locked.ID, locked.FailedLoginCount+3, &until)
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.FailedLoginCount)
	require.NotNil(t, found.LockedUntil)
	assert.True(t, found.LockedUntil.Equal(until))

	require.NoError(t, repo.UpdateLoginState(ctx, account.ID, 0, nil))
	found, err = repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.FailedLoginCount)
	assert.Nil(t, found.LockedUntil)
}

func TestAccountRepository_TransactionRollsBack(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx := context.Background()
	account := createAccount(t, repo, "rollback@example.com")

	err := repo.WithTransaction(ctx, func(ctx context.Context, tx AccountRepository) error {
		if err := tx.UpdateLoginState(ctx, account.ID, 2, nil); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	found, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.FailedLoginCount)
}

func TestAccountRepository_UpdatePasswordClearsLockout(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	ctx := context.Background()
	account := createAccount(t, repo, "reset@example.com")
	until := time.Now().Add(time.Hour)
	require.NoError(t, repo.UpdateLoginState(ctx, account.ID, 3, &until))

	require.NoError(t, repo.UpdatePassword(ctx, account.ID, "new-hash"))

	found, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", found.PasswordHash)
	assert.Equal(t, 0, found.FailedLoginCount)
	assert.Nil(t, found.LockedUntil)
}

func TestAccountRepository_UpdateRoleUnknown(t *testing.T) {
	repo := NewAccountRepository(newTestDB(t))
	err := repo.UpdateRole(context.Background(), uuid.New(), model.RoleAdministrator)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDatasetRepository_Lifecycle(t *testing.T) {
	gormDB := newTestDB(t)
	datasets := NewDatasetRepository(gormDB)
	files := NewAudioFileRepository(gormDB)
	ctx := context.Background()

	dataset := &model.Dataset{Name: "gtzan", Status: model.DatasetStatusValid}
	require.NoError(t, datasets.Create(ctx, dataset))
	file := &model.AudioFile{DatasetID: &dataset.ID, FilePath: "/uploads/a.wav", Format: "wav"}
	require.NoError(t, files.Create(ctx, file))

	found, err := datasets.FindByID(ctx, dataset.ID)
	require.NoError(t, err)
	require.Len(t, found.Files, 1)
	assert.Equal(t, "wav", found.Files[0].Format)

	require.NoError(t, datasets.Rename(ctx, dataset.ID, "gtzan-v2"))
	require.NoError(t, datasets.UpdateStatus(ctx, dataset.ID, model.DatasetStatusArchived))
	found, err = datasets.FindByID(ctx, dataset.ID)
	require.NoError(t, err)
	assert.Equal(t, "gtzan-v2", found.Name)
	assert.Equal(t, model.DatasetStatusArchived, found.Status)

	require.NoError(t, datasets.Delete(ctx, dataset.ID))
	_, err = datasets.FindByID(ctx, dataset.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, datasets.Delete(ctx, dataset.ID), gorm.ErrRecordNotFound)

	var orphan model.AudioFile
	require.NoError(t, gormDB.First(&orphan, "id = ?", file.ID).Error)
	assert.Nil(t, orphan.DatasetID)
}

func TestEvaluationRepository_UpsertOverwrites(t *testing.T) {
	gormDB := newTestDB(t)
	classifiers := NewClassifierRepository(gormDB)
	evaluations := NewEvaluationRepository(gormDB)
	ctx := context.Background()

	classifier := &model.Classifier{DatasetID: uuid.New(), AlgorithmType: "cnn"}
	require.NoError(t, classifiers.Create(ctx, classifier))

	first := 0.5
	require.NoError(t, evaluations.Upsert(ctx, &model.Evaluation{
		ModelID: classifier.ID, Accuracy: &first, Classes: `["Pop"]`, ConfusionMatrix: `[[1]]`,
	}))
	second := 0.8
	require.NoError(t, evaluations.Upsert(ctx, &model.Evaluation{
		ModelID: classifier.ID, Accuracy: &second, Classes: `["Pop","Rock"]`, ConfusionMatrix: `[[1,0],[1,2]]`,
	}))

	found, err := evaluations.FindByModelID(ctx, classifier.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Accuracy)
	assert.Equal(t, 0.8, *found.Accuracy)
	assert.Nil(t, found.F1Score)
	assert.Equal(t, `[[1,0],[1,2]]`, found.ConfusionMatrix)

	var count int64
	require.NoError(t, gormDB.Model(&model.Evaluation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = evaluations.FindByModelID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClassifierRepository_FindByIDsWithEvaluation(t *testing.T) {
	gormDB := newTestDB(t)
	classifiers := NewClassifierRepository(gormDB)
	evaluations := NewEvaluationRepository(gormDB)
	ctx := context.Background()

	evaluated := &model.Classifier{DatasetID: uuid.New(), AlgorithmType: "cnn"}
	pending := &model.Classifier{DatasetID: uuid.New(), AlgorithmType: "svm"}
	require.NoError(t, classifiers.Create(ctx, evaluated))
	require.NoError(t, classifiers.Create(ctx, pending))
	acc := 0.9
	require.NoError(t, evaluations.Upsert(ctx, &model.Evaluation{
		ModelID: evaluated.ID, Accuracy: &acc, Classes: `[]`, ConfusionMatrix: `[]`,
	}))

	found, err := classifiers.FindByIDsWithEvaluation(ctx, []uuid.UUID{evaluated.ID, pending.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 2)

	byID := map[uuid.UUID]model.Classifier{}
	for _, c := range found {
		byID[c.ID] = c
	}
	require.NotNil(t, byID[evaluated.ID].Evaluation)
	assert.Equal(t, 0.9, *byID[evaluated.ID].Evaluation.Accuracy)
	assert.Nil(t, byID[pending.ID].Evaluation)
}

func TestClassifierRepository_UpdateWeightsPath(t *testing.T) {
	gormDB := newTestDB(t)
	classifiers := NewClassifierRepository(gormDB)
	ctx := context.Background()

	classifier := &model.Classifier{DatasetID: uuid.New(), AlgorithmType: "cnn", WeightsPath: "/models/1-cnn.h5"}
	require.NoError(t, classifiers.Create(ctx, classifier))

	require.NoError(t, classifiers.UpdateWeightsPath(ctx, classifier.ID, "/models/checkpoint-x-epoch-3.h5"))
	found, err := classifiers.FindByID(ctx, classifier.ID)
	require.NoError(t, err)
	assert.Equal(t, "/models/checkpoint-x-epoch-3.h5", found.WeightsPath)

	assert.ErrorIs(t, classifiers.UpdateWeightsPath(ctx, uuid.New(), "x"), gorm.ErrRecordNotFound)
}

func TestStatsRepository_CountRows(t *testing.T) {
	gormDB := newTestDB(t)
	accounts := NewAccountRepository(gormDB)
	createAccount(t, accounts, "a@example.com")
	createAccount(t, accounts, "b@example.com")

	stats := NewStatsRepository(gormDB, db.Models()...)
	counts, err := stats.CountRows(context.Background())
	require.NoError(t, err)

	require.Len(t, counts, len(db.Models()))
	assert.Equal(t, TableCount{Table: "accounts", Rows: 2}, counts[0])
	assert.Equal(t, TableCount{Table: "activity_logs", Rows: 0}, counts[1])
}
