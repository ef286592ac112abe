package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"genrelab/internal/config"
	apperrors "genrelab/internal/errors"
	"genrelab/internal/handler"
	"genrelab/internal/model"
	"genrelab/internal/service"
)

// multipartOverhead is allowed on top of the upload limit for form framing.
const multipartOverhead = 1 << 20

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Dataset *handler.DatasetHandler
	Model   *handler.ModelHandler
	Backup  *handler.BackupHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *zap.Logger,
	authService service.AuthService,
	h Handlers,
) {
	e.HideBanner = true
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}
	e.JSONSerializer = &StrictJSONSerializer{}
	e.HTTPErrorHandler = errorHandler(logger)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	authenticated := requireRole(authService, "")
	user := requireRole(authService, model.RoleUser)
	admin := requireRole(authService, model.RoleAdministrator)

	api.GET("/me", h.Auth.Me, authenticated)

	// User routes. Administrators satisfy every role.
	uploadLimit := middleware.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes+multipartOverhead, 10))
	api.POST("/upload", h.Dataset.Upload, user, uploadLimit)
	api.GET("/models/:id/metrics", h.Model.GetMetrics, user)
	api.GET("/models/:id/confusion-matrix", h.Model.GetConfusionMatrix, user)
	api.POST("/models/compare", h.Model.CompareModels, user)

	// Administrator routes
	adminGroup := api.Group("", admin)
	adminGroup.GET("/datasets", h.Dataset.ListDatasets)
	adminGroup.POST("/datasets", h.Dataset.CreateDataset)
	adminGroup.GET("/datasets/:id", h.Dataset.GetDataset)
	adminGroup.PATCH("/datasets/:id", h.Dataset.RenameDataset)
	adminGroup.DELETE("/datasets/:id", h.Dataset.DeleteDataset)
	adminGroup.GET("/datasets/:id/validate", h.Dataset.ValidateDataset)
	adminGroup.POST("/train", h.Model.Train)
	adminGroup.POST("/models/:id/evaluate", h.Model.Evaluate)
	adminGroup.POST("/models/:id/checkpoints", h.Model.SaveCheckpoint)
	adminGroup.GET("/users", h.User.ListUsers)
	adminGroup.PATCH("/users/:id/role", h.User.UpdateRole)
	adminGroup.POST("/backup", h.Backup.TriggerBackup)
}

// requireRole verifies the bearer token through the auth service and stores
// the claims under handler.ClaimsContextKey. An empty role accepts any valid
// token.
func requireRole(authService service.AuthService, role model.Role) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ClaimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Authorize(c.Request().Context(), token, role)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			httpErr := apperrors.MapErrorToHTTP(apperrors.ErrInvalidToken)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
		},
	})
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}

// errorHandler renders every error as an errors.ErrorResponse body.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := apperrors.ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			switch m := he.Message.(type) {
			case apperrors.ErrorResponse:
				body = m
			case string:
				body = apperrors.ErrorResponse{Error: m, Code: codeForStatus(status)}
			default:
				body = apperrors.ErrorResponse{Error: http.StatusText(status), Code: codeForStatus(status)}
			}
			if he.Internal != nil {
				err = he.Internal
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Warn("write error response", zap.Error(writeErr))
		}
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "INVALID_TOKEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "FILE_TOO_LARGE"
	default:
		if status >= http.StatusInternalServerError {
			return "INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// StrictJSONSerializer is echo's JSON serializer with unknown request fields
// rejected.
type StrictJSONSerializer struct{}

// Serialize writes i as JSON.
func (StrictJSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

// Deserialize reads the request body into i.
func (StrictJSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err)).SetInternal(err)
	}
	return nil
}
