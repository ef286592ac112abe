package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "genrelab/internal/errors"
	"genrelab/internal/model"
	"genrelab/internal/repository"
)

// TrainingResult identifies a started training run.
type TrainingResult struct {
	ModelID    uuid.UUID `json:"model_id"`
	TrainingID string    `json:"training_id"`
}

// ModelComparison is one row of a model comparison. Scores are 0 for a model
// that has not been evaluated.
type ModelComparison struct {
	ModelID       uuid.UUID `json:"model_id"`
	AlgorithmType string    `json:"algorithm_type"`
	Accuracy      float64   `json:"accuracy"`
	F1Score       float64   `json:"f1_score"`
}

// ClassifierService manages classifier model records.
type ClassifierService interface {
	TrainModel(ctx context.Context, actorID, datasetID uuid.UUID, algorithmType string, hyperparameters map[string]interface{}) (*TrainingResult, error)
	SaveCheckpoint(ctx context.Context, modelID uuid.UUID, epoch int) (*model.Classifier, error)
	CompareModels(ctx context.Context, modelIDs []uuid.UUID) ([]ModelComparison, error)
}

type classifierService struct {
	classifiers repository.ClassifierRepository
	datasets    repository.DatasetRepository
	activity    ActivityLogger
	logger      *zap.Logger
	now         func() time.Time
}

// NewClassifierService creates a new classifier service.
func NewClassifierService(
	classifiers repository.ClassifierRepository,
	datasets repository.DatasetRepository,
	activity ActivityLogger,
	logger *zap.Logger,
) ClassifierService {
	return &classifierService{
		classifiers: classifiers,
		datasets:    datasets,
		activity:    activity,
		logger:      logger,
		now:         time.Now,
	}
}

// TrainModel records a new classifier for a dataset. Weights are not produced
// here; the record points at where the trainer will write them.
func (s *classifierService) TrainModel(ctx context.Context, actorID, datasetID uuid.UUID, algorithmType string, hyperparameters map[string]interface{}) (*TrainingResult, error) {
	if _, err := s.datasets.FindByID(ctx, datasetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDatasetNotFound
		}
		return nil, fmt.Errorf("find dataset: %w", err)
	}

	if hyperparameters == nil {
		hyperparameters = map[string]interface{}{}
	}
	params, err := json.Marshal(hyperparameters)
	if err != nil {
		return nil, fmt.Errorf("encode hyperparameters: %w", err)
	}

	now := s.now()
	classifier := &model.Classifier{
		ID:              uuid.New(),
		DatasetID:       datasetID,
		AlgorithmType:   algorithmType,
		WeightsPath:     fmt.Sprintf("/models/%d-%s.h5", now.UnixMilli(), algorithmType),
		Hyperparameters: string(params),
	}
	if err := s.classifiers.Create(ctx, classifier); err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}

	if err := s.activity.LogActivity(ctx, &actorID, model.ActionModelTrained); err != nil {
		return nil, err
	}

	result := &TrainingResult{
		ModelID:    classifier.ID,
		TrainingID: fmt.Sprintf("training-%s-%d", classifier.ID, now.UnixMilli()),
	}
	s.logger.Info("training started",
		zap.String("model_id", classifier.ID.String()),
		zap.String("training_id", result.TrainingID),
		zap.String("algorithm", algorithmType),
	)
	return result, nil
}

// SaveCheckpoint points the model at the weights written for epoch.
func (s *classifierService) SaveCheckpoint(ctx context.Context, modelID uuid.UUID, epoch int) (*model.Classifier, error) {
	path := fmt.Sprintf("/models/checkpoint-%s-epoch-%d.h5", modelID, epoch)
	if err := s.classifiers.UpdateWeightsPath(ctx, modelID, path); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrModelNotFound
		}
		return nil, fmt.Errorf("save checkpoint: %w", err)
	}
	return s.classifiers.FindByID(ctx, modelID)
}

// CompareModels returns accuracy and F1 side by side for the known models
// among modelIDs.
func (s *classifierService) CompareModels(ctx context.Context, modelIDs []uuid.UUID) ([]ModelComparison, error) {
	classifiers, err := s.classifiers.FindByIDsWithEvaluation(ctx, modelIDs)
	if err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}

	comparisons := make([]ModelComparison, 0, len(classifiers))
	for _, c := range classifiers {
		row := ModelComparison{
			ModelID:       c.ID,
			AlgorithmType: c.AlgorithmType,
		}
		if c.Evaluation != nil {
			row.Accuracy = orZero(c.Evaluation.Accuracy)
			row.F1Score = orZero(c.Evaluation.F1Score)
		}
		comparisons = append(comparisons, row)
	}
	return comparisons, nil
}

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
