package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is wrapped by every "no such record" error.
var ErrNotFound = errors.New("not found")

var (
	// ErrAccountNotFound is returned when an account is not found.
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	// ErrDatasetNotFound is returned when a dataset is not found.
	ErrDatasetNotFound = fmt.Errorf("dataset %w", ErrNotFound)
	// ErrModelNotFound is returned when a classifier model is not found.
	ErrModelNotFound = fmt.Errorf("model %w", ErrNotFound)
	// ErrEvaluationNotFound is returned when a model has no persisted evaluation.
	ErrEvaluationNotFound = fmt.Errorf("evaluation %w", ErrNotFound)
)

var (
	// ErrInvalidCredentials is returned for a wrong password or an unknown email.
	// The two cases are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountLocked is returned while the lockout window is open, and for the
	// attempt that opens it.
	ErrAccountLocked = errors.New("account is locked, try again later")
	// ErrInvalidToken covers malformed, tampered, expired and under-privileged tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrAccountExists is returned when registering an email that is taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidRole is returned for a role other than User or Administrator.
	ErrInvalidRole = errors.New("invalid role")
	// ErrWeakPassword is returned when a password is shorter than 6 characters.
	ErrWeakPassword = errors.New("password must be at least 6 characters long")
	// ErrSelfDemotion is returned when an administrator removes their own role.
	ErrSelfDemotion = errors.New("cannot remove your own administrator role")
	// ErrInvalidFileFormat is returned for uploads that are not wav or mp3.
	ErrInvalidFileFormat = errors.New("invalid file format, allowed formats: wav, mp3")
	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrAccountLocked):
		return NewHTTPError(http.StatusUnauthorized, ErrAccountLocked.Error(), "ACCOUNT_LOCKED")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrAccountNotFound):
		return NewHTTPError(http.StatusNotFound, ErrAccountNotFound.Error(), "ACCOUNT_NOT_FOUND")
	case errors.Is(err, ErrDatasetNotFound):
		return NewHTTPError(http.StatusNotFound, ErrDatasetNotFound.Error(), "DATASET_NOT_FOUND")
	case errors.Is(err, ErrModelNotFound):
		return NewHTTPError(http.StatusNotFound, ErrModelNotFound.Error(), "MODEL_NOT_FOUND")
	case errors.Is(err, ErrEvaluationNotFound):
		return NewHTTPError(http.StatusNotFound, ErrEvaluationNotFound.Error(), "EVALUATION_NOT_FOUND")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "record not found", "NOT_FOUND")
	case errors.Is(err, ErrAccountExists):
		return NewHTTPError(http.StatusConflict, ErrAccountExists.Error(), "ACCOUNT_EXISTS")
	case errors.Is(err, ErrInvalidRole):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidRole.Error(), "INVALID_ROLE")
	case errors.Is(err, ErrWeakPassword):
		return NewHTTPError(http.StatusBadRequest, ErrWeakPassword.Error(), "WEAK_PASSWORD")
	case errors.Is(err, ErrSelfDemotion):
		return NewHTTPError(http.StatusBadRequest, ErrSelfDemotion.Error(), "SELF_DEMOTION")
	case errors.Is(err, ErrInvalidFileFormat):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidFileFormat.Error(), "INVALID_FILE_FORMAT")
	case errors.Is(err, ErrFileTooLarge):
		return NewHTTPError(http.StatusBadRequest, ErrFileTooLarge.Error(), "FILE_TOO_LARGE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
