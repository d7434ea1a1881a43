package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvReader_Defaults(t *testing.T) {
	t.Setenv("ENV", EnvLocal)
	t.Setenv("JWT_SIGNING_KEY", "secret")

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "secret", cfg.JWT.SigningKey)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "tasktracker.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, 5432, cfg.Storage.Postgres.Port)
}

func TestEnvReader_Overrides(t *testing.T) {
	t.Setenv("ENV", EnvProd)
	t.Setenv("JWT_SIGNING_KEY", "secret")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "30s")

	cfg, err := NewEnvReader().Read()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "cache:6380", cfg.Storage.Redis.Addr)
	assert.Equal(t, 2, cfg.Storage.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestEnvReader_Errors(t *testing.T) {
	t.Run("missing signing key", func(t *testing.T) {
		t.Setenv("ENV", EnvDev)
		t.Setenv("JWT_SIGNING_KEY", "")
		require.NoError(t, os.Unsetenv("JWT_SIGNING_KEY"))

		_, err := NewEnvReader().Read()
		assert.Error(t, err)
	})

	t.Run("unknown env", func(t *testing.T) {
		t.Setenv("ENV", "staging")
		t.Setenv("JWT_SIGNING_KEY", "secret")

		_, err := NewEnvReader().Read()
		assert.EqualError(t, err, "unknown env: staging")
	})
}
