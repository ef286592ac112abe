package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "genrelab/internal/errors"
	"genrelab/internal/model"
	"genrelab/internal/storage"
)

const testMaxUpload = 50 * 1024 * 1024

func TestDatasetService_CreateDataset(t *testing.T) {
	mockDatasets := new(MockDatasetRepository)
	mockDatasets.On("Create", mock.Anything, mock.MatchedBy(func(d *model.Dataset) bool {
		return d.Name == "GTZAN" && d.Status == model.DatasetStatusValid
	})).Return(nil)

	service := NewDatasetService(mockDatasets, new(MockAudioFileRepository), nil, testMaxUpload, zap.NewNop())
	dataset, err := service.CreateDataset(context.Background(), "GTZAN", "")
	require.NoError(t, err)
	assert.Equal(t, model.DatasetStatusValid, dataset.Status)
	mockDatasets.AssertExpectations(t)
}

func TestDatasetService_ValidateDataset(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		files      []model.AudioFile
		wantValid  bool
		wantErrors []string
	}{
		{
			name:       "no files",
			wantErrors: []string{"Dataset has no audio files"},
		},
		{
			name:       "all supported",
			files:      []model.AudioFile{{Format: "wav"}, {Format: "MP3"}},
			wantValid:  true,
			wantErrors: []string{},
		},
		{
			name:       "some invalid formats",
			files:      []model.AudioFile{{Format: "wav"}, {Format: "flac"}, {Format: "ogg"}},
			wantErrors: []string{"2 files have invalid formats"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDatasets := new(MockDatasetRepository)
			mockDatasets.On("FindByID", mock.Anything, id).Return(&model.Dataset{ID: id, Files: tt.files}, nil)

			service := NewDatasetService(mockDatasets, new(MockAudioFileRepository), nil, testMaxUpload, zap.NewNop())
			result, err := service.ValidateDataset(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.IsValid)
			assert.Equal(t, tt.wantErrors, result.Errors)
		})
	}
}

func TestDatasetService_NotFound(t *testing.T) {
	id := uuid.New()
	mockDatasets := new(MockDatasetRepository)
	mockDatasets.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)
	mockDatasets.On("Rename", mock.Anything, id, "new").Return(gorm.ErrRecordNotFound)
	mockDatasets.On("UpdateStatus", mock.Anything, id, model.DatasetStatusArchived).Return(gorm.ErrRecordNotFound)

	service := NewDatasetService(mockDatasets, new(MockAudioFileRepository), nil, testMaxUpload, zap.NewNop())
	ctx := context.Background()

	_, err := service.GetDataset(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrDatasetNotFound)
	_, err = service.ValidateDataset(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrDatasetNotFound)
	assert.ErrorIs(t, service.RenameDataset(ctx, id, "new"), apperrors.ErrDatasetNotFound)
	assert.ErrorIs(t, service.DeleteDataset(ctx, id), apperrors.ErrDatasetNotFound)
	mockDatasets.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDatasetService_DeleteDatasetArchivesFirst(t *testing.T) {
	id := uuid.New()
	var calls []string
	mockDatasets := new(MockDatasetRepository)
	mockDatasets.On("UpdateStatus", mock.Anything, id, model.DatasetStatusArchived).
		Run(func(mock.Arguments) { calls = append(calls, "archive") }).Return(nil)
	mockDatasets.On("Delete", mock.Anything, id).
		Run(func(mock.Arguments) { calls = append(calls, "delete") }).Return(nil)

	service := NewDatasetService(mockDatasets, new(MockAudioFileRepository), nil, testMaxUpload, zap.NewNop())
	require.NoError(t, service.DeleteDataset(context.Background(), id))
	assert.Equal(t, []string{"archive", "delete"}, calls)
}

func TestDatasetService_UploadAudio(t *testing.T) {
	dir := t.TempDir()
	datasetID := uuid.New()

	mockDatasets := new(MockDatasetRepository)
	mockDatasets.On("FindByID", mock.Anything, datasetID).Return(&model.Dataset{ID: datasetID}, nil)
	mockFiles := new(MockAudioFileRepository)
	mockFiles.On("Create", mock.Anything, mock.AnythingOfType("*model.AudioFile")).Return(nil)

	service := NewDatasetService(mockDatasets, mockFiles, storage.NewLocalStore(dir), testMaxUpload, zap.NewNop())
	file, err := service.UploadAudio(context.Background(), UploadInput{
		FileName:  "Blues Track.WAV",
		Size:      4,
		Body:      strings.NewReader("RIFF"),
		DatasetID: &datasetID,
		Genre:     "Blues",
	})
	require.NoError(t, err)

	assert.Equal(t, "wav", file.Format)
	assert.Equal(t, &datasetID, file.DatasetID)
	assert.Regexp(t, `^/uploads/\d+-Blues Track\.WAV$`, file.FilePath)

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(file.FilePath)))
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data))
	mockFiles.AssertExpectations(t)
}

func TestDatasetService_UploadAudioRejects(t *testing.T) {
	missing := uuid.New()
	mockDatasets := new(MockDatasetRepository)
	mockDatasets.On("FindByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)
	mockFiles := new(MockAudioFileRepository)

	service := NewDatasetService(mockDatasets, mockFiles, storage.NewLocalStore(t.TempDir()), testMaxUpload, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name string
		in   UploadInput
		want error
	}{
		{name: "unsupported extension", in: UploadInput{FileName: "song.flac", Size: 10}, want: apperrors.ErrInvalidFileFormat},
		{name: "no extension", in: UploadInput{FileName: "song", Size: 10}, want: apperrors.ErrInvalidFileFormat},
		{name: "too large", in: UploadInput{FileName: "song.mp3", Size: testMaxUpload + 1}, want: apperrors.ErrFileTooLarge},
		{name: "unknown dataset", in: UploadInput{FileName: "song.mp3", Size: 1, DatasetID: &missing}, want: apperrors.ErrDatasetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Body = strings.NewReader("x")
			_, err := service.UploadAudio(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	mockFiles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
