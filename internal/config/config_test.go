package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomieradar/roomieradar/internal/telemetry"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "HTTP_PORT", "JWT_SECRET", "DB_HOST", "REDIS_PORT", "LOG_LEVEL", "OTEL_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 30*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, telemetry.InfoLevel, cfg.Log.Level)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "6543", cfg.Database.Port)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, telemetry.WarnLevel, cfg.Log.Level)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "production", cfg.Telemetry.Environment)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.False(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("development fills in a JWT secret", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "development")
		t.Setenv("JWT_SECRET", "")
		cfg := Load()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	})

	t.Run("production requires a JWT secret", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("JWT_SECRET", "")
		cfg := Load()
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "eighty")
		cfg := Load()
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad database config", func(t *testing.T) {
		t.Setenv("DB_NAME", "")
		cfg := Load()
		cfg.Database.DBName = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("ROOMIERADAR_TEST_KEY=from-file\nHTTP_PORT=7000\n"), 0o600))

	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("ROOMIERADAR_TEST_KEY", "")
	require.NoError(t, os.Unsetenv("ROOMIERADAR_TEST_KEY"))

	require.NoError(t, LoadDotEnv(file, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("ROOMIERADAR_TEST_KEY"))
	// Variables already set win over the file.
	assert.Equal(t, "8081", os.Getenv("HTTP_PORT"))
}
