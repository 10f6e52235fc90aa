package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/earnalert_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "-0.30", cfg.Strategy.EntryReturnMin)
	assert.Equal(t, "-0.05", cfg.Strategy.EntryReturnMax)
	assert.Equal(t, "-0.10", cfg.Strategy.StopLossThreshold)
	assert.Equal(t, 50, cfg.Strategy.MaxHoldingDays)
	assert.Equal(t, 24*time.Hour, cfg.Strategy.UniverseCacheTTL)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/earnalert_test")
	t.Setenv("ENV", "sandbox")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/earnalert_test")
	t.Setenv("MAX_HOLDING_DAYS", "30")
	t.Setenv("UNIVERSE_CACHE_TTL", "6h")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Strategy.MaxHoldingDays)
	assert.Equal(t, 6*time.Hour, cfg.Strategy.UniverseCacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/earnalert_test")
	t.Setenv("MAX_HOLDING_DAYS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Strategy.MaxHoldingDays)
}
