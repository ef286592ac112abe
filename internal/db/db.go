package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"genrelab/internal/config"
	"genrelab/internal/model"
)

const slowQueryThreshold = 200 * time.Millisecond

// Option customizes Open.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger routes GORM's warnings, errors and slow queries to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Open returns a connected GORM DB instance for the configured driver. Without
// WithLogger, GORM output is discarded.
func Open(driver, dsn string, opts ...Option) (*gorm.DB, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	var dialector gorm.Dialector
	switch driver {
	case config.DriverMySQL:
		dialector = mysql.Open(dsn)
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	gormLogger, err := newGormLogger(o.logger)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// Models lists every persisted model, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Account{},
		&model.ActivityLog{},
		&model.Dataset{},
		&model.AudioFile{},
		&model.Classifier{},
		&model.Evaluation{},
	}
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops all tables in reverse dependency order.
func Reset(db *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newGormLogger adapts l to GORM's logger. Missing rows are an expected result
// of lookups and are not logged.
func newGormLogger(l *zap.Logger) (logger.Interface, error) {
	std, err := zap.NewStdLogAt(l.WithOptions(zap.AddCallerSkip(1)), zap.WarnLevel)
	if err != nil {
		return nil, fmt.Errorf("gorm logger: %w", err)
	}
	return logger.New(std, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	}), nil
}
