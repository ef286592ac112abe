package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"genrelab/internal/db"
	"genrelab/internal/model"
	"genrelab/internal/repository"
	"genrelab/internal/storage"
)

type stubStats struct {
	counts []repository.TableCount
	err    error
}

func (s stubStats) CountRows(ctx context.Context) ([]repository.TableCount, error) {
	return s.counts, s.err
}

func TestBackupService_TriggerBackup(t *testing.T) {
	actorID := uuid.New()
	dir := t.TempDir()
	activity := new(MockActivityLogger)
	activity.On("LogActivity", mock.Anything, &actorID, model.ActionBackupTriggered).Return(nil)

	stats := stubStats{counts: []repository.TableCount{{Table: "accounts", Rows: 2}, {Table: "datasets", Rows: 0}}}
	service := NewBackupService(stats, storage.NewLocalStore(dir), activity, zap.NewNop())

	result, err := service.TriggerBackup(context.Background(), actorID)
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, stats.counts, result.Tables)
	assert.Regexp(t, `^/uploads/backup-.*\.json$`, result.Location)

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(result.Location)))
	require.NoError(t, err)
	var manifest BackupResult
	require.NoError(t, json.Unmarshal(data, &manifest))
	assert.Equal(t, stats.counts, manifest.Tables)
	activity.AssertExpectations(t)
}

func TestBackupService_StatsFailure(t *testing.T) {
	activity := new(MockActivityLogger)
	activity.On("LogActivity", mock.Anything, mock.Anything, model.ActionBackupTriggered).Return(nil)
	boom := errors.New("db down")

	service := NewBackupService(stubStats{err: boom}, storage.NewLocalStore(t.TempDir()), activity, zap.NewNop())
	_, err := service.TriggerBackup(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
}

func TestBackupService_CountsEveryTable(t *testing.T) {
	gdb := newTestDB(t)
	activity := new(MockActivityLogger)
	activity.On("LogActivity", mock.Anything, mock.Anything, model.ActionBackupTriggered).Return(nil)

	stats := repository.NewStatsRepository(gdb, db.Models()...)
	service := NewBackupService(stats, storage.NewLocalStore(t.TempDir()), activity, zap.NewNop())

	result, err := service.TriggerBackup(context.Background(), uuid.New())
	require.NoError(t, err)

	tables := make([]string, 0, len(result.Tables))
	for _, c := range result.Tables {
		tables = append(tables, c.Table)
	}
	assert.Equal(t, []string{"accounts", "activity_logs", "datasets", "audio_files", "classifiers", "evaluations"}, tables)
}
