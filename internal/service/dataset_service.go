package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "genrelab/internal/errors"
	"genrelab/internal/model"
	"genrelab/internal/repository"
	"genrelab/internal/storage"
)

// allowedFormats lists the accepted audio file extensions.
var allowedFormats = map[string]bool{
	"wav": true,
	"mp3": true,
}

// DatasetValidation reports whether a dataset is ready for training.
type DatasetValidation struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// UploadInput describes one uploaded audio file.
type UploadInput struct {
	FileName  string
	Size      int64
	Body      io.Reader
	DatasetID *uuid.UUID
	Genre     string
}

// DatasetService manages datasets and their audio files.
type DatasetService interface {
	CreateDataset(ctx context.Context, name string, status model.DatasetStatus) (*model.Dataset, error)
	ListDatasets(ctx context.Context) ([]model.Dataset, error)
	GetDataset(ctx context.Context, id uuid.UUID) (*model.Dataset, error)
	RenameDataset(ctx context.Context, id uuid.UUID, name string) error
	ValidateDataset(ctx context.Context, id uuid.UUID) (*DatasetValidation, error)
	DeleteDataset(ctx context.Context, id uuid.UUID) error
	UploadAudio(ctx context.Context, in UploadInput) (*model.AudioFile, error)
}

type datasetService struct {
	datasets       repository.DatasetRepository
	files          repository.AudioFileRepository
	store          storage.Store
	maxUploadBytes int64
	logger         *zap.Logger
	now            func() time.Time
}

// NewDatasetService creates a new dataset service.
func NewDatasetService(
	datasets repository.DatasetRepository,
	files repository.AudioFileRepository,
	store storage.Store,
	maxUploadBytes int64,
	logger *zap.Logger,
) DatasetService {
	return &datasetService{
		datasets:       datasets,
		files:          files,
		store:          store,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *datasetService) CreateDataset(ctx context.Context, name string, status model.DatasetStatus) (*model.Dataset, error) {
	if status == "" {
		status = model.DatasetStatusValid
	}
	dataset := &model.Dataset{
		ID:     uuid.New(),
		Name:   name,
		Status: status,
	}
	if err := s.datasets.Create(ctx, dataset); err != nil {
		return nil, fmt.Errorf("create dataset: %w", err)
	}
	return dataset, nil
}

func (s *datasetService) ListDatasets(ctx context.Context) ([]model.Dataset, error) {
	datasets, err := s.datasets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return datasets, nil
}

func (s *datasetService) GetDataset(ctx context.Context, id uuid.UUID) (*model.Dataset, error) {
	dataset, err := s.datasets.FindByID(ctx, id)
	if err != nil {
		return nil, datasetError(err)
	}
	return dataset, nil
}

func (s *datasetService) RenameDataset(ctx context.Context, id uuid.UUID, name string) error {
	if err := s.datasets.Rename(ctx, id, name); err != nil {
		return datasetError(err)
	}
	return nil
}

// ValidateDataset checks that the dataset has files and that every file is a
// supported format.
func (s *datasetService) ValidateDataset(ctx context.Context, id uuid.UUID) (*DatasetValidation, error) {
	dataset, err := s.datasets.FindByID(ctx, id)
	if err != nil {
		return nil, datasetError(err)
	}

	problems := make([]string, 0)
	if len(dataset.Files) == 0 {
		problems = append(problems, "Dataset has no audio files")
	}

	var invalid int
	for _, f := range dataset.Files {
		if !allowedFormats[strings.ToLower(f.Format)] {
			invalid++
		}
	}
	if invalid > 0 {
		problems = append(problems, fmt.Sprintf("%d files have invalid formats", invalid))
	}

	return &DatasetValidation{
		IsValid: len(problems) == 0,
		Errors:  problems,
	}, nil
}

// DeleteDataset archives the dataset and then removes it. Its audio files are
// detached, not deleted.
func (s *datasetService) DeleteDataset(ctx context.Context, id uuid.UUID) error {
	if err := s.datasets.UpdateStatus(ctx, id, model.DatasetStatusArchived); err != nil {
		return datasetError(err)
	}
	if err := s.datasets.Delete(ctx, id); err != nil {
		return datasetError(err)
	}
	s.logger.Info("dataset deleted", zap.String("dataset_id", id.String()))
	return nil
}

// UploadAudio stores an audio file and records it, optionally inside a dataset.
func (s *datasetService) UploadAudio(ctx context.Context, in UploadInput) (*model.AudioFile, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(in.FileName), "."))
	if !allowedFormats[format] {
		return nil, apperrors.ErrInvalidFileFormat
	}
	if in.Size > s.maxUploadBytes {
		return nil, apperrors.ErrFileTooLarge
	}

	if in.DatasetID != nil {
		if _, err := s.datasets.FindByID(ctx, *in.DatasetID); err != nil {
			return nil, datasetError(err)
		}
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixNano(), filepath.Base(in.FileName))
	location, err := s.store.Save(ctx, name, io.LimitReader(in.Body, s.maxUploadBytes), in.Size)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	file := &model.AudioFile{
		ID:        uuid.New(),
		DatasetID: in.DatasetID,
		FilePath:  location,
		Format:    format,
		SizeBytes: in.Size,
		Genre:     in.Genre,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("create audio file: %w", err)
	}

	s.logger.Info("audio uploaded",
		zap.String("file_id", file.ID.String()),
		zap.String("path", location),
		zap.Int64("size", in.Size),
	)
	return file, nil
}

func datasetError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrDatasetNotFound
	}
	return fmt.Errorf("dataset: %w", err)
}
