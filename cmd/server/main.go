package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	_ "genrelab/docs" // swagger docs
	"genrelab/internal/auth"
	"genrelab/internal/cache"
	"genrelab/internal/config"
	"genrelab/internal/db"
	"genrelab/internal/handler"
	"genrelab/internal/logging"
	"genrelab/internal/repository"
	"genrelab/internal/router"
	"genrelab/internal/service"
	"genrelab/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Genre Lab API
// @version 1.0
// @description Music genre classification lab: datasets, training records, model evaluation and role-based access.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN, db.WithLogger(logger.Named("gorm")))
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			logger.Warn("close database", zap.Error(err))
		}
	}()

	if cfg.ResetDB {
		logger.Warn("RESET_DB is set, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, serving without cache", zap.Error(err))
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage init: %w", err)
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(gormDB)
	activityRepo := repository.NewActivityLogRepository(gormDB)
	datasetRepo := repository.NewDatasetRepository(gormDB)
	audioFileRepo := repository.NewAudioFileRepository(gormDB)
	classifierRepo := repository.NewClassifierRepository(gormDB)
	evaluationRepo := repository.NewEvaluationRepository(gormDB)
	statsRepo := repository.NewStatsRepository(gormDB, db.Models()...)

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	authService := service.NewAuthService(accountRepo, activityRepo, jwtService, logger.Named("auth"))
	userService := service.NewUserService(accountRepo, authService, cacheClient, logger.Named("users"))
	datasetService := service.NewDatasetService(datasetRepo, audioFileRepo, store, cfg.MaxUploadBytes, logger.Named("datasets"))
	classifierService := service.NewClassifierService(classifierRepo, datasetRepo, authService, logger.Named("models"))
	evaluationService := service.NewEvaluationService(classifierRepo, evaluationRepo, authService, cacheClient, logger.Named("evaluations"))
	backupService := service.NewBackupService(statsRepo, store, authService, logger.Named("backup"))

	e := echo.New()
	router.Register(e, cfg, logger, authService, router.Handlers{
		Auth:    handler.NewAuthHandler(authService, userService),
		User:    handler.NewUserHandler(userService),
		Dataset: handler.NewDatasetHandler(datasetService),
		Model:   handler.NewModelHandler(classifierService, evaluationService),
		Backup:  handler.NewBackupHandler(backupService),
	})

	if cfg.SwaggerHost != "" {
		logger.Info("swagger documentation available", zap.String("url", cfg.SwaggerHost+"/swagger/index.html"))
	}

	addr := ":" + cfg.ServerPort
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
