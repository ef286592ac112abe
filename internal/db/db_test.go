package db

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"genrelab/internal/config"
	"genrelab/internal/model"
)

func TestOpen_LogsThroughZapWithoutRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	gdb, err := Open(config.DriverSQLite, dsn, WithLogger(zap.New(core)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })
	require.NoError(t, Migrate(gdb))

	var account model.Account
	err = gdb.Where("email = ?", "nobody@example.com").First(&account).Error
	require.Error(t, err)
	assert.Zero(t, logs.FilterMessageSnippet("record not found").Len())

	err = gdb.Exec("SELECT * FROM no_such_table").Error
	require.Error(t, err)
	entries := logs.FilterMessageSnippet("no_such_table").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "dsn")
	assert.Error(t, err)
}
