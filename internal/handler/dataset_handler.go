package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"genrelab/internal/model"
	"genrelab/internal/service"
)

// DatasetHandler handles dataset and upload endpoints.
type DatasetHandler struct {
	datasetService service.DatasetService
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(datasetService service.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasetService: datasetService}
}

// CreateDatasetRequest represents a dataset creation request.
type CreateDatasetRequest struct {
	Name   string              `json:"name" validate:"required,max=255"`
	Status model.DatasetStatus `json:"status" validate:"omitempty,oneof=valid archived"`
}

// RenameDatasetRequest represents a dataset rename request.
type RenameDatasetRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// UploadResponse represents a stored audio file.
type UploadResponse struct {
	ID       uuid.UUID `json:"id"`
	Message  string    `json:"message"`
	FilePath string    `json:"file_path"`
}

// CreateDataset godoc
// @Summary Create dataset
// @Tags datasets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateDatasetRequest true "Dataset"
// @Success 201 {object} model.Dataset
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /datasets [post]
func (h *DatasetHandler) CreateDataset(c echo.Context) error {
	var req CreateDatasetRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	dataset, err := h.datasetService.CreateDataset(c.Request().Context(), req.Name, req.Status)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, dataset)
}

// ListDatasets godoc
// @Summary List datasets with their files
// @Tags datasets
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Dataset
// @Failure 401 {object} errors.ErrorResponse
// @Router /datasets [get]
func (h *DatasetHandler) ListDatasets(c echo.Context) error {
	datasets, err := h.datasetService.ListDatasets(c.Request().Context())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, datasets)
}

// GetDataset godoc
// @Summary Get dataset
// @Tags datasets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Success 200 {object} model.Dataset
// @Failure 404 {object} errors.ErrorResponse
// @Router /datasets/{id} [get]
func (h *DatasetHandler) GetDataset(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	dataset, err := h.datasetService.GetDataset(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, dataset)
}

// RenameDataset godoc
// @Summary Rename dataset
// @Tags datasets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Param request body RenameDatasetRequest true "New name"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /datasets/{id} [patch]
func (h *DatasetHandler) RenameDataset(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req RenameDatasetRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	if err := h.datasetService.RenameDataset(c.Request().Context(), id, req.Name); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Dataset renamed successfully"})
}

// ValidateDataset godoc
// @Summary Check a dataset is ready for training
// @Tags datasets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Success 200 {object} service.DatasetValidation
// @Failure 404 {object} errors.ErrorResponse
// @Router /datasets/{id}/validate [get]
func (h *DatasetHandler) ValidateDataset(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	result, err := h.datasetService.ValidateDataset(c.Request().Context(), id)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// DeleteDataset godoc
// @Summary Delete dataset
// @Tags datasets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Dataset ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /datasets/{id} [delete]
func (h *DatasetHandler) DeleteDataset(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.datasetService.DeleteDataset(c.Request().Context(), id); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Dataset deleted successfully"})
}

// Upload godoc
// @Summary Upload an audio file
// @Tags datasets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "wav or mp3 file"
// @Param dataset_id formData string false "Dataset ID"
// @Param genre formData string false "Known genre label"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /upload [post]
func (h *DatasetHandler) Upload(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest("No file provided", "FILE_REQUIRED")
	}

	var datasetID *uuid.UUID
	if raw := c.FormValue("dataset_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest("invalid dataset_id", "INVALID_UUID")
		}
		datasetID = &id
	}

	src, err := header.Open()
	if err != nil {
		return invalidBody()
	}
	defer src.Close()

	file, err := h.datasetService.UploadAudio(c.Request().Context(), service.UploadInput{
		FileName:  header.Filename,
		Size:      header.Size,
		Body:      src,
		DatasetID: datasetID,
		Genre:     c.FormValue("genre"),
	})
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, UploadResponse{
		ID:       file.ID,
		Message:  "File uploaded successfully",
		FilePath: file.FilePath,
	})
}
