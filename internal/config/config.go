package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Supported upload storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application level configuration loaded from a YAML file and
// environment variables.
type Config struct {
	ServerPort     string `yaml:"server_port"`
	DBDriver       string `yaml:"db_driver"`
	DBDSN          string `yaml:"db_dsn"`
	ResetDB        bool   `yaml:"reset_db"`
	RedisAddr      string `yaml:"redis_addr"`
	RedisDB        int    `yaml:"redis_db"`
	RedisPass      string `yaml:"redis_password"`
	JWTSecret      string `yaml:"jwt_secret"`
	UploadDir      string `yaml:"upload_dir"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	StorageBackend string `yaml:"storage_backend"`
	S3Bucket       string `yaml:"s3_bucket"`
	S3Region       string `yaml:"s3_region"`
	S3Endpoint     string `yaml:"s3_endpoint"`
	S3AccessKey    string `yaml:"s3_access_key"`
	S3SecretKey    string `yaml:"s3_secret_key"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	LogFile        string `yaml:"log_file"`
	SwaggerHost    string `yaml:"swagger_host"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		ServerPort:     "8080",
		DBDriver:       DriverMySQL,
		DBDSN:          "user:password@tcp(localhost:3306)/genrelab?charset=utf8mb4&parseTime=True&loc=Local",
		RedisAddr:      "localhost:6379",
		JWTSecret:      "change-me",
		UploadDir:      "uploads",
		MaxUploadBytes: 50 * 1024 * 1024,
		StorageBackend: StorageLocal,
		S3Region:       "us-east-1",
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// Load builds Config from environment with sensible defaults. When
// CONFIG_FILE is set, the file is applied first and env vars override it.
func Load() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile reads the YAML file at path on top of the defaults, then applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := Defaults()
	if err := cfg.applyFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	// MYSQL_DSN is still honoured for older deployments.
	c.DBDSN = getEnv("DB_DSN", getEnv("MYSQL_DSN", c.DBDSN))
	c.ResetDB = getEnvBool("RESET_DB", c.ResetDB)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPass = getEnv("REDIS_PASSWORD", c.RedisPass)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	c.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))
	c.StorageBackend = getEnv("STORAGE_BACKEND", c.StorageBackend)
	c.S3Bucket = getEnv("S3_BUCKET", c.S3Bucket)
	c.S3Region = getEnv("S3_REGION", c.S3Region)
	c.S3Endpoint = getEnv("S3_ENDPOINT", c.S3Endpoint)
	c.S3AccessKey = getEnv("S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = getEnv("S3_SECRET_KEY", c.S3SecretKey)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	c.SwaggerHost = getEnv("SWAGGER_HOST", c.SwaggerHost)
}

// Validate checks that the configuration can be used to start the service.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("db_dsn is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max_upload_bytes must be positive")
	}
	switch c.StorageBackend {
	case StorageLocal:
		if c.UploadDir == "" {
			return errors.New("upload_dir is required for local storage")
		}
	case StorageS3:
		if c.S3Bucket == "" {
			return errors.New("s3_bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage_backend %q", c.StorageBackend)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
