package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "genrelab/internal/errors"
)

func setupCLIEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "genrelab.db"))
	t.Setenv("STORAGE_BACKEND", "local")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FILE", "")
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedIsIdempotent(t *testing.T) {
	setupCLIEnv(t)

	out, err := runCLI(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "created admin@example.com (Administrator)")
	assert.Contains(t, out, "created user@example.com (User)")

	out, err = runCLI(t, "seed", "--admin-password", "another-secret")
	require.NoError(t, err)
	assert.Contains(t, out, "updated admin@example.com (Administrator)")
	assert.Contains(t, out, "updated user@example.com (User)")
}

func TestCreateUserAndList(t *testing.T) {
	setupCLIEnv(t)

	out, err := runCLI(t, "create-user", "--email", "curator@example.com", "--password", "secret1", "--role", "Administrator")
	require.NoError(t, err)
	assert.Contains(t, out, "created curator@example.com (Administrator)")

	_, err = runCLI(t, "create-user", "--email", "curator@example.com", "--password", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrAccountExists)

	_, err = runCLI(t, "create-user", "--email", "weak@example.com", "--password", "123")
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)

	_, err = runCLI(t, "create-user", "--email", "odd@example.com", "--password", "secret1", "--role", "Owner")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRole)

	out, err = runCLI(t, "users")
	require.NoError(t, err)
	assert.Contains(t, out, "curator@example.com")
	assert.Contains(t, out, "Administrator")
	assert.NotContains(t, out, "weak@example.com")
}

func TestUsersEmpty(t *testing.T) {
	setupCLIEnv(t)

	out, err := runCLI(t, "users")
	require.NoError(t, err)
	assert.Equal(t, "No accounts\n", out)
}

func TestResetPassword(t *testing.T) {
	setupCLIEnv(t)

	_, err := runCLI(t, "reset-password", "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	_, err = runCLI(t, "seed")
	require.NoError(t, err)

	_, err = runCLI(t, "reset-password", "user@example.com", "12")
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)

	out, err := runCLI(t, "reset-password", "user@example.com", "fresh-secret")
	require.NoError(t, err)
	assert.Equal(t, "password reset for user@example.com\n", out)

	_, err = runCLI(t, "reset-password", "user@example.com")
	assert.Error(t, err)
}

func TestRenderAccountsKeepsHeaderCase(t *testing.T) {
	out := renderAccounts(
		[]string{"Email", "Failures"},
		[][]string{{"a@example.com", "2"}, {"b@example.com", "12"}},
		1,
	)
	assert.Contains(t, out, "Email")
	assert.Contains(t, out, "Failures")
	assert.NotContains(t, out, "EMAIL")
	assert.Contains(t, out, "a@example.com")
	assert.Contains(t, out, "b@example.com")
	assert.Regexp(t, `\s2 │`, out)
}
