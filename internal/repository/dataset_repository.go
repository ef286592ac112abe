package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"genrelab/internal/model"
)

// DatasetRepository defines dataset persistence operations.
type DatasetRepository interface {
	Create(ctx context.Context, dataset *model.Dataset) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Dataset, error)
	List(ctx context.Context) ([]model.Dataset, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.DatasetStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type datasetRepository struct {
	db *gorm.DB
}

// NewDatasetRepository creates a new dataset repository.
func NewDatasetRepository(db *gorm.DB) DatasetRepository {
	return &datasetRepository{db: db}
}

// Create creates a new dataset.
func (r *datasetRepository) Create(ctx context.Context, dataset *model.Dataset) error {
	return r.db.WithContext(ctx).Create(dataset).Error
}

// FindByID finds a dataset with its audio files.
func (r *datasetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Dataset, error) {
	var dataset model.Dataset
	if err := r.db.WithContext(ctx).Preload("Files").Where("id = ?", id).First(&dataset).Error; err != nil {
		return nil, err
	}
	return &dataset, nil
}

// List lists all datasets with their audio files.
func (r *datasetRepository) List(ctx context.Context) ([]model.Dataset, error) {
	var datasets []model.Dataset
	if err := r.db.WithContext(ctx).Preload("Files").Order("created_at DESC").Find(&datasets).Error; err != nil {
		return nil, err
	}
	return datasets, nil
}

// Rename changes the dataset name.
func (r *datasetRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	return r.updateColumn(ctx, id, "name", name)
}

// UpdateStatus changes the dataset status.
func (r *datasetRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DatasetStatus) error {
	return r.updateColumn(ctx, id, "status", status)
}

func (r *datasetRepository) updateColumn(ctx context.Context, id uuid.UUID, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Dataset{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a dataset. Its audio files are kept and detached.
func (r *datasetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.AudioFile{}).Where("dataset_id = ?", id).
			Update("dataset_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Dataset{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AudioFileRepository defines audio file persistence operations.
type AudioFileRepository interface {
	Create(ctx context.Context, file *model.AudioFile) error
}

type audioFileRepository struct {
	db *gorm.DB
}

// NewAudioFileRepository creates a new audio file repository.
func NewAudioFileRepository(db *gorm.DB) AudioFileRepository {
	return &audioFileRepository{db: db}
}

// Create creates a new audio file record.
func (r *audioFileRepository) Create(ctx context.Context, file *model.AudioFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}
