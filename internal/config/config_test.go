package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, int64(50*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, StorageLocal, cfg.StorageBackend)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DB_DSN", "file::memory:")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RESET_DB", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "file::memory:", cfg.DBDSN)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.ResetDB)
}

func TestLoadFile_EnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genrelab.yaml")
	content := "server_port: \"7000\"\ndb_driver: postgres\ndb_dsn: host=db\njwt_secret: from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "host=db", cfg.DBDSN)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "oracle" }, wantErr: true},
		{name: "empty dsn", mutate: func(c *Config) { c.DBDSN = "" }, wantErr: true},
		{name: "empty secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{name: "zero upload limit", mutate: func(c *Config) { c.MaxUploadBytes = 0 }, wantErr: true},
		{name: "unknown storage", mutate: func(c *Config) { c.StorageBackend = "ftp" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) { c.StorageBackend = StorageS3 }, wantErr: true},
		{name: "s3 with bucket", mutate: func(c *Config) { c.StorageBackend = StorageS3; c.S3Bucket = "audio" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
