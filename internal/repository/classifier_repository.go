package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"genrelab/internal/model"
)

// ClassifierRepository defines classifier model persistence operations.
type ClassifierRepository interface {
	Create(ctx context.Context, classifier *model.Classifier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Classifier, error)
	FindByIDsWithEvaluation(ctx context.Context, ids []uuid.UUID) ([]model.Classifier, error)
	UpdateWeightsPath(ctx context.Context, id uuid.UUID, weightsPath string) error
}

type classifierRepository struct {
	db *gorm.DB
}

// NewClassifierRepository creates a new classifier repository.
func NewClassifierRepository(db *gorm.DB) ClassifierRepository {
	return &classifierRepository{db: db}
}

// Create creates a new classifier record.
func (r *classifierRepository) Create(ctx context.Context, classifier *model.Classifier) error {
	return r.db.WithContext(ctx).Create(classifier).Error
}

// FindByID finds a classifier by ID.
func (r *classifierRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Classifier, error) {
	var classifier model.Classifier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&classifier).Error; err != nil {
		return nil, err
	}
	return &classifier, nil
}

// FindByIDsWithEvaluation loads the given classifiers with their evaluations.
// Unknown IDs are skipped.
func (r *classifierRepository) FindByIDsWithEvaluation(ctx context.Context, ids []uuid.UUID) ([]model.Classifier, error) {
	var classifiers []model.Classifier
	if len(ids) == 0 {
		return classifiers, nil
	}
	if err := r.db.WithContext(ctx).Preload("Evaluation").
		Where("id IN ?", ids).Order("created_at ASC").Find(&classifiers).Error; err != nil {
		return nil, err
	}
	return classifiers, nil
}

// UpdateWeightsPath points the classifier at a new weights file.
func (r *classifierRepository) UpdateWeightsPath(ctx context.Context, id uuid.UUID, weightsPath string) error {
	res := r.db.WithContext(ctx).Model(&model.Classifier{}).Where("id = ?", id).Update("weights_path", weightsPath)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
