package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"genrelab/internal/cache"
	apperrors "genrelab/internal/errors"
	"genrelab/internal/metrics"
	"genrelab/internal/model"
	"genrelab/internal/repository"
)

const evaluationCacheTTL = 5 * time.Minute

// Score is a metric value that encodes NaN as JSON null.
type Score float64

// MarshalJSON implements json.Marshaler.
func (s Score) MarshalJSON() ([]byte, error) {
	f := float64(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Score) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = Score(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// EvaluationRecord is the persisted evaluation of one model.
type EvaluationRecord struct {
	ModelID         uuid.UUID       `json:"model_id"`
	Accuracy        Score           `json:"accuracy"`
	Precision       Score           `json:"precision"`
	Recall          Score           `json:"recall"`
	F1Score         Score           `json:"f1_score"`
	ConfusionMatrix ConfusionMatrix `json:"confusion_matrix"`
	EvaluatedAt     time.Time       `json:"evaluated_at"`
}

// EvaluationService computes, stores and serves model evaluations.
type EvaluationService interface {
	Evaluate(ctx context.Context, actorID, modelID uuid.UUID, predictions []LabelPrediction) (*EvaluationRecord, error)
	GetEvaluation(ctx context.Context, modelID uuid.UUID) (*EvaluationRecord, error)
	GenerateConfusionMatrix(ctx context.Context, modelID uuid.UUID) (*ConfusionMatrix, error)
}

type evaluationService struct {
	classifiers repository.ClassifierRepository
	evaluations repository.EvaluationRepository
	activity    ActivityLogger
	cache       *cache.Client
	logger      *zap.Logger
}

// NewEvaluationService creates a new evaluation service.
func NewEvaluationService(
	classifiers repository.ClassifierRepository,
	evaluations repository.EvaluationRepository,
	activity ActivityLogger,
	cache *cache.Client,
	logger *zap.Logger,
) EvaluationService {
	return &evaluationService{
		classifiers: classifiers,
		evaluations: evaluations,
		activity:    activity,
		cache:       cache,
		logger:      logger,
	}
}

func (s *evaluationService) cacheKey(modelID uuid.UUID) string {
	return fmt.Sprintf("evaluation:%s", modelID)
}

// Evaluate scores predictions for a model and stores the result, replacing
// any earlier evaluation of the same model.
func (s *evaluationService) Evaluate(ctx context.Context, actorID, modelID uuid.UUID, predictions []LabelPrediction) (*EvaluationRecord, error) {
	if _, err := s.classifiers.FindByID(ctx, modelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrModelNotFound
		}
		return nil, fmt.Errorf("find model: %w", err)
	}

	m := CalculateMetrics(predictions)

	classes, err := json.Marshal(m.ConfusionMatrix.Classes)
	if err != nil {
		return nil, fmt.Errorf("encode classes: %w", err)
	}
	counts, err := json.Marshal(m.ConfusionMatrix.Counts)
	if err != nil {
		return nil, fmt.Errorf("encode confusion matrix: %w", err)
	}

	row := &model.Evaluation{
		ModelID:         modelID,
		Accuracy:        nullable(m.Accuracy),
		Precision:       nullable(m.Precision),
		Recall:          nullable(m.Recall),
		F1Score:         nullable(m.F1Score),
		Classes:         string(classes),
		ConfusionMatrix: string(counts),
	}
	if err := s.evaluations.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("store evaluation: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(modelID))
	metrics.EvaluationsTotal.Inc()

	if err := s.activity.LogActivity(ctx, &actorID, model.ActionModelEvaluated); err != nil {
		return nil, err
	}
	s.logger.Info("model evaluated",
		zap.String("model_id", modelID.String()),
		zap.Int("samples", len(predictions)),
		zap.Int("classes", len(m.ConfusionMatrix.Classes)),
	)

	return &EvaluationRecord{
		ModelID:         modelID,
		Accuracy:        Score(m.Accuracy),
		Precision:       Score(m.Precision),
		Recall:          Score(m.Recall),
		F1Score:         Score(m.F1Score),
		ConfusionMatrix: m.ConfusionMatrix,
		EvaluatedAt:     row.UpdatedAt,
	}, nil
}

// GetEvaluation returns the stored evaluation of a model, reading through the cache.
func (s *evaluationService) GetEvaluation(ctx context.Context, modelID uuid.UUID) (*EvaluationRecord, error) {
	var cached EvaluationRecord
	if s.cache.GetJSON(ctx, s.cacheKey(modelID), &cached) {
		return &cached, nil
	}

	row, err := s.evaluations.FindByModelID(ctx, modelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEvaluationNotFound
		}
		return nil, fmt.Errorf("find evaluation: %w", err)
	}

	record, err := recordFromRow(row)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, s.cacheKey(modelID), record, evaluationCacheTTL)
	return record, nil
}

// GenerateConfusionMatrix returns only the stored confusion matrix of a model.
func (s *evaluationService) GenerateConfusionMatrix(ctx context.Context, modelID uuid.UUID) (*ConfusionMatrix, error) {
	record, err := s.GetEvaluation(ctx, modelID)
	if err != nil {
		return nil, err
	}
	return &record.ConfusionMatrix, nil
}

func recordFromRow(row *model.Evaluation) (*EvaluationRecord, error) {
	var matrix ConfusionMatrix
	if err := json.Unmarshal([]byte(row.Classes), &matrix.Classes); err != nil {
		return nil, fmt.Errorf("decode classes: %w", err)
	}
	if err := json.Unmarshal([]byte(row.ConfusionMatrix), &matrix.Counts); err != nil {
		return nil, fmt.Errorf("decode confusion matrix: %w", err)
	}
	if matrix.Classes == nil {
		matrix.Classes = []string{}
	}
	if matrix.Counts == nil {
		matrix.Counts = [][]int{}
	}

	return &EvaluationRecord{
		ModelID:         row.ModelID,
		Accuracy:        Score(orNaN(row.Accuracy)),
		Precision:       Score(orNaN(row.Precision)),
		Recall:          Score(orNaN(row.Recall)),
		F1Score:         Score(orNaN(row.F1Score)),
		ConfusionMatrix: matrix,
		EvaluatedAt:     row.UpdatedAt,
	}, nil
}

// nullable maps NaN to nil so it can be stored as SQL NULL.
func nullable(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
