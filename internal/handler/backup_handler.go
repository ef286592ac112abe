package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"genrelab/internal/service"
)

// BackupHandler handles the backup endpoint.
type BackupHandler struct {
	backupService service.BackupService
}

// NewBackupHandler creates a new backup handler.
func NewBackupHandler(backupService service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// BackupResponse wraps a completed backup.
type BackupResponse struct {
	Message    string                `json:"message"`
	BackupData *service.BackupResult `json:"backup_data"`
}

// TriggerBackup godoc
// @Summary Snapshot table statistics to storage
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} BackupResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /backup [post]
func (h *BackupHandler) TriggerBackup(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	result, err := h.backupService.TriggerBackup(c.Request().Context(), claims.AccountID)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, BackupResponse{
		Message:    "Backup completed successfully",
		BackupData: result,
	})
}
