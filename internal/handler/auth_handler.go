package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"genrelab/internal/model"
	"genrelab/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, userService service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=6"`
	Role     model.Role `json:"role" validate:"omitempty,oneof=User Administrator"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	Token string          `json:"token"`
	User  service.Profile `json:"user"`
}

func authResponse(token string, account *model.Account) AuthResponse {
	return AuthResponse{
		Token: token,
		User: service.Profile{
			ID:        account.ID,
			Email:     account.Email,
			Role:      account.Role,
			CreatedAt: account.CreatedAt,
		},
	}
}

// Register godoc
// @Summary Register a new user
// @Description Self-registration always creates a User account.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	token, account, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.Role)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, authResponse(token, account))
}

// Login godoc
// @Summary Login user
// @Description Three consecutive failures lock the account for 30 minutes.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	token, account, err := h.authService.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, authResponse(token, account))
}

// Me godoc
// @Summary Current account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Profile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	profile, err := h.userService.GetProfile(c.Request().Context(), claims.AccountID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, profile)
}
