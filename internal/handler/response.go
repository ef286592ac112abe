package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"genrelab/internal/auth"
	"genrelab/internal/errors"
)

// ClaimsContextKey is where the auth middleware stores the verified claims.
const ClaimsContextKey = "user"

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

func domainError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func badRequest(message, code string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func invalidBody() error {
	return badRequest("invalid request body", "INVALID_REQUEST")
}

func validationError(err error) error {
	return badRequest(err.Error(), "VALIDATION_ERROR")
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, badRequest("invalid "+name, "INVALID_UUID")
	}
	return id, nil
}

// currentClaims returns the claims of the authenticated caller.
func currentClaims(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, domainError(errors.ErrInvalidToken)
	}
	return claims, nil
}
