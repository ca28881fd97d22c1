package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-with-at-least-32-characters"

// setRequiredEnv sets the variables without which Load cannot succeed.
// t.Setenv also prevents these tests from running in parallel, which
// matters since they share the process environment.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ROSTER_DATABASE_URL", "postgres://localhost:5432/roster_test")
	t.Setenv("ROSTER_AUTH_JWT_SECRET", testJWTSecret)
}

func TestLoad(t *testing.T) {
	t.Run("loads from environment with defaults applied", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "postgres://localhost:5432/roster_test", cfg.Database.URL)
		assert.Equal(t, testJWTSecret, cfg.Auth.JWTSecret)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Server.LogLevel)
		assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
		assert.Equal(t, 7*24*60, cfg.Auth.RefreshTokenLifetimeMinutes)
		assert.Equal(t, "uploads", cfg.Storage.UploadDir)
		assert.Equal(t, int64(10*1024*1024), cfg.Storage.MaxUploadBytes)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ROSTER_SERVER_PORT", "9090")
		t.Setenv("ROSTER_SERVER_LOG_LEVEL", "debug")
		t.Setenv("ROSTER_AUTH_TOKEN_LIFETIME_MINUTES", "15")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Server.LogLevel)
		assert.Equal(t, 15, cfg.Auth.TokenLifetimeMinutes)
	})

	t.Run("missing database URL fails validation", func(t *testing.T) {
		t.Setenv("ROSTER_DATABASE_URL", "")
		t.Setenv("ROSTER_AUTH_JWT_SECRET", testJWTSecret)

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("short JWT secret fails validation", func(t *testing.T) {
		t.Setenv("ROSTER_DATABASE_URL", "postgres://localhost:5432/roster_test")
		t.Setenv("ROSTER_AUTH_JWT_SECRET", "too-short")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid log level fails validation", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ROSTER_SERVER_LOG_LEVEL", "verbose")

		_, err := Load()
		assert.Error(t, err)
	})
}
