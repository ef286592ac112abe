package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"genrelab/internal/model"
	"genrelab/internal/repository"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context) ([]model.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateLoginState(ctx context.Context, id uuid.UUID, failedLoginCount int, lockedUntil *time.Time) error {
	args := m.Called(ctx, id, failedLoginCount, lockedUntil)
	return args.Error(0)
}

// WithTransaction runs fn against the mock itself.
func (m *MockAccountRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.AccountRepository) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

// MockActivityLogRepository is a mock implementation of ActivityLogRepository.
type MockActivityLogRepository struct {
	mock.Mock
}

func (m *MockActivityLogRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockActivityLogger is a mock implementation of ActivityLogger.
type MockActivityLogger struct {
	mock.Mock
}

func (m *MockActivityLogger) LogActivity(ctx context.Context, accountID *uuid.UUID, action string) error {
	args := m.Called(ctx, accountID, action)
	return args.Error(0)
}

// MockDatasetRepository is a mock implementation of DatasetRepository.
type MockDatasetRepository struct {
	mock.Mock
}

func (m *MockDatasetRepository) Create(ctx context.Context, dataset *model.Dataset) error {
	args := m.Called(ctx, dataset)
	return args.Error(0)
}

func (m *MockDatasetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Dataset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dataset), args.Error(1)
}

func (m *MockDatasetRepository) List(ctx context.Context) ([]model.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Dataset), args.Error(1)
}

func (m *MockDatasetRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockDatasetRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DatasetStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockDatasetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAudioFileRepository is a mock implementation of AudioFileRepository.
type MockAudioFileRepository struct {
	mock.Mock
}

func (m *MockAudioFileRepository) Create(ctx context.Context, file *model.AudioFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

// MockClassifierRepository is a mock implementation of ClassifierRepository.
type MockClassifierRepository struct {
	mock.Mock
}

func (m *MockClassifierRepository) Create(ctx context.Context, classifier *model.Classifier) error {
	args := m.Called(ctx, classifier)
	return args.Error(0)
}

func (m *MockClassifierRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Classifier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Classifier), args.Error(1)
}

func (m *MockClassifierRepository) FindByIDsWithEvaluation(ctx context.Context, ids []uuid.UUID) ([]model.Classifier, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Classifier), args.Error(1)
}

func (m *MockClassifierRepository) UpdateWeightsPath(ctx context.Context, id uuid.UUID, weightsPath string) error {
	args := m.Called(ctx, id, weightsPath)
	return args.Error(0)
}

// MockEvaluationRepository is a mock implementation of EvaluationRepository.
type MockEvaluationRepository struct {
	mock.Mock
}

func (m *MockEvaluationRepository) Upsert(ctx context.Context, evaluation *model.Evaluation) error {
	args := m.Called(ctx, evaluation)
	return args.Error(0)
}

func (m *MockEvaluationRepository) FindByModelID(ctx context.Context, modelID uuid.UUID) (*model.Evaluation, error) {
	args := m.Called(ctx, modelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Evaluation), args.Error(1)
}
