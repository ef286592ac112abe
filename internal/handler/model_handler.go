package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"genrelab/internal/service"
)

// ModelHandler handles classifier training and evaluation endpoints.
type ModelHandler struct {
	classifierService service.ClassifierService
	evaluationService service.EvaluationService
}

// NewModelHandler creates a new model handler.
func NewModelHandler(classifierService service.ClassifierService, evaluationService service.EvaluationService) *ModelHandler {
	return &ModelHandler{
		classifierService: classifierService,
		evaluationService: evaluationService,
	}
}

// TrainRequest represents a training request.
type TrainRequest struct {
	DatasetID       string                 `json:"dataset_id" validate:"required,uuid"`
	AlgorithmType   string                 `json:"algorithm_type" validate:"required,max=64"`
	Hyperparameters map[string]interface{} `json:"hyperparameters"`
}

// TrainResponse represents a started training run.
type TrainResponse struct {
	Message    string    `json:"message"`
	ModelID    uuid.UUID `json:"model_id"`
	TrainingID string    `json:"training_id"`
}

// CheckpointRequest records the weights of a training epoch.
type CheckpointRequest struct {
	Epoch int `json:"epoch" validate:"gte=0"`
}

// EvaluateRequest carries labelled predictions for a model.
type EvaluateRequest struct {
	Predictions []service.LabelPrediction `json:"predictions" validate:"required,dive"`
}

// CompareRequest lists the models to compare.
type CompareRequest struct {
	ModelIDs []string `json:"model_ids" validate:"required,min=1,dive,uuid"`
}

// Train godoc
// @Summary Start training a classifier
// @Tags models
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TrainRequest true "Training parameters"
// @Success 202 {object} TrainResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /train [post]
func (h *ModelHandler) Train(c echo.Context) error {
	var req TrainRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	result, err := h.classifierService.TrainModel(
		c.Request().Context(),
		claims.AccountID,
		uuid.MustParse(req.DatasetID),
		req.AlgorithmType,
		req.Hyperparameters,
	)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusAccepted, TrainResponse{
		Message:    "Training started",
		ModelID:    result.ModelID,
		TrainingID: result.TrainingID,
	})
}

// SaveCheckpoint godoc
// @Summary Record a training checkpoint
// @Tags models
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Model ID"
// @Param request body CheckpointRequest true "Epoch"
// @Success 200 {object} model.Classifier
// @Failure 404 {object} errors.ErrorResponse
// @Router /models/{id}/checkpoints [post]
func (h *ModelHandler) SaveCheckpoint(c echo.Context) error {
	modelID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req CheckpointRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	classifier, err := h.classifierService.SaveCheckpoint(c.Request().Context(), modelID, req.Epoch)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, classifier)
}

// Evaluate godoc
// @Summary Evaluate a model against labelled predictions
// @Description Replaces any earlier evaluation. Undefined scores are null.
// @Tags models
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Model ID"
// @Param request body EvaluateRequest true "Predictions"
// @Success 200 {object} service.EvaluationRecord
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /models/{id}/evaluate [post]
func (h *ModelHandler) Evaluate(c echo.Context) error {
	modelID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	record, err := h.evaluationService.Evaluate(c.Request().Context(), claims.AccountID, modelID, req.Predictions)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, record)
}

// GetMetrics godoc
// @Summary Get the stored metrics of a model
// @Tags models
// @Produce json
// @Security BearerAuth
// @Param id path string true "Model ID"
// @Success 200 {object} service.EvaluationRecord
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /models/{id}/metrics [get]
func (h *ModelHandler) GetMetrics(c echo.Context) error {
	modelID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	record, err := h.evaluationService.GetEvaluation(c.Request().Context(), modelID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, record)
}

// GetConfusionMatrix godoc
// @Summary Get the stored confusion matrix of a model
// @Tags models
// @Produce json
// @Security BearerAuth
// @Param id path string true "Model ID"
// @Success 200 {object} service.ConfusionMatrix
// @Failure 404 {object} errors.ErrorResponse
// @Router /models/{id}/confusion-matrix [get]
func (h *ModelHandler) GetConfusionMatrix(c echo.Context) error {
	modelID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	matrix, err := h.evaluationService.GenerateConfusionMatrix(c.Request().Context(), modelID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, matrix)
}

// CompareModels godoc
// @Summary Compare accuracy and F1 across models
// @Tags models
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CompareRequest true "Model IDs"
// @Success 200 {array} service.ModelComparison
// @Failure 400 {object} errors.ErrorResponse
// @Router /models/compare [post]
func (h *ModelHandler) CompareModels(c echo.Context) error {
	var req CompareRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	ids := make([]uuid.UUID, 0, len(req.ModelIDs))
	for _, raw := range req.ModelIDs {
		ids = append(ids, uuid.MustParse(raw))
	}

	result, err := h.classifierService.CompareModels(c.Request().Context(), ids)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, result)
}
