package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"genrelab/internal/model"
	"genrelab/internal/service"
)

// UserHandler bundles account administration handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// AccountSummary is an account as listed to administrators.
type AccountSummary struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Role             model.Role `json:"role"`
	CreatedAt        time.Time  `json:"created_at"`
	FailedLoginCount int        `json:"failed_login_count"`
	LockedUntil      *time.Time `json:"locked_until"`
}

// UpdateRoleRequest changes the role of an account.
type UpdateRoleRequest struct {
	Role model.Role `json:"role" validate:"required,oneof=User Administrator"`
}

// UpdateRoleResponse is returned after a role change.
type UpdateRoleResponse struct {
	Message string          `json:"message"`
	User    service.Profile `json:"user"`
}

// ListUsers godoc
// @Summary List accounts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} AccountSummary
// @Failure 401 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	accounts, err := h.svc.ListAccounts(c.Request().Context())
	if err != nil {
		return domainError(err)
	}

	out := make([]AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountSummary{
			ID:               a.ID,
			Email:            a.Email,
			Role:             a.Role,
			CreatedAt:        a.CreatedAt,
			FailedLoginCount: a.FailedLoginCount,
			LockedUntil:      a.LockedUntil,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateRole godoc
// @Summary Change account role
// @Description Administrators cannot remove their own Administrator role.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param request body UpdateRoleRequest true "New role"
// @Success 200 {object} UpdateRoleResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	targetID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateRoleRequest
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

	account, err := h.svc.UpdateRole(c.Request().Context(), claims.AccountID, targetID, req.Role)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, UpdateRoleResponse{
		Message: "User role updated successfully",
		User: service.Profile{
			ID:        account.ID,
			Email:     account.Email,
			Role:      account.Role,
			CreatedAt: account.CreatedAt,
		},
	})
}
