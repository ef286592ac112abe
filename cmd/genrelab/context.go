package main

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"genrelab/internal/auth"
	"genrelab/internal/config"
	"genrelab/internal/db"
	"genrelab/internal/logging"
	"genrelab/internal/repository"
	"genrelab/internal/service"
)

// environment holds the pieces a command needs once the database is open.
type environment struct {
	config   *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	accounts repository.AccountRepository
	auth     service.AuthService
	users    service.UserService
}

type commandContext struct {
	configFlag *string

	envOnce sync.Once
	env     *environment
	envErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) loadConfig() (*config.Config, error) {
	var path string
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// ensureEnvironment opens the database and migrates it on first use.
func (c *commandContext) ensureEnvironment() (*environment, error) {
	c.envOnce.Do(func() {
		cfg, err := c.loadConfig()
		if err != nil {
			c.envErr = err
			return
		}

		logger, err := logging.New(logging.Options{
			Level:  cfg.LogLevel,
			Format: "console",
			File:   cfg.LogFile,
		})
		if err != nil {
			c.envErr = err
			return
		}

		gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN, db.WithLogger(logger.Named("gorm")))
		if err != nil {
			c.envErr = err
			return
		}
		if err := db.Migrate(gormDB); err != nil {
			_ = db.Close(gormDB)
			c.envErr = err
			return
		}

		accounts := repository.NewAccountRepository(gormDB)
		authService := service.NewAuthService(
			accounts,
			repository.NewActivityLogRepository(gormDB),
			auth.NewJWTService(cfg.JWTSecret),
			logger.Named("auth"),
		)

		c.env = &environment{
			config:   cfg,
			logger:   logger,
			db:       gormDB,
			accounts: accounts,
			auth:     authService,
			users:    service.NewUserService(accounts, authService, nil, logger.Named("users")),
		}
	})
	return c.env, c.envErr
}

func (c *commandContext) close() error {
	if c.env == nil {
		return nil
	}
	_ = c.env.logger.Sync()
	err := db.Close(c.env.db)
	c.env = nil
	if err != nil && !errors.Is(err, gorm.ErrInvalidDB) {
		return err
	}
	return nil
}
