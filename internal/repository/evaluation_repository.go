package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"genrelab/internal/model"
)

// EvaluationRepository defines evaluation persistence operations.
type EvaluationRepository interface {
	// Upsert creates the evaluation of a model or overwrites the existing one.
	Upsert(ctx context.Context, evaluation *model.Evaluation) error
	FindByModelID(ctx context.Context, modelID uuid.UUID) (*model.Evaluation, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository creates a new evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

// Upsert inserts or replaces the evaluation keyed by model ID.
func (r *evaluationRepository) Upsert(ctx context.Context, evaluation *model.Evaluation) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "model_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"accuracy", "precision", "recall", "f1_score",
			"classes", "confusion_matrix", "updated_at",
		}),
	}).Create(evaluation).Error
}

// FindByModelID finds the evaluation of a model.
func (r *evaluationRepository) FindByModelID(ctx context.Context, modelID uuid.UUID) (*model.Evaluation, error) {
	var evaluation model.Evaluation
	if err := r.db.WithContext(ctx).Where("model_id = ?", modelID).First(&evaluation).Error; err != nil {
		return nil, err
	}
	return &evaluation, nil
}
