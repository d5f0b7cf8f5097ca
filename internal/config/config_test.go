package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("GRID_IDLE_TTL", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 30*time.Minute, cfg.GridIdleTTL)
	assert.Equal(t, "*/5 * * * *", cfg.GridSweepSchedule)
	assert.False(t, cfg.RecomputeExpected)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL_TEST", "postgres://test")
	t.Setenv("PORT", "9090")
	t.Setenv("GRID_IDLE_TTL", "5m")
	t.Setenv("HATCH_RECOMPUTE_EXPECTED", "true")
	t.Setenv("HATCH_RECOMPUTE_CULLED", "1")
	t.Setenv("ALLOW_CROSS_SITE_DEV", "TRUE")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "postgres://test", cfg.DatabaseURL)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.GridIdleTTL)
	assert.True(t, cfg.RecomputeExpected)
	assert.True(t, cfg.RecomputeCulled)
	assert.True(t, cfg.AllowCrossSiteDev)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("GRID_IDLE_TTL", "half an hour")
	_, err := Load()
	assert.ErrorContains(t, err, "GRID_IDLE_TTL")

	t.Setenv("GRID_IDLE_TTL", "30m")
	t.Setenv("HATCH_RECOMPUTE_CULLED", "sometimes")
	_, err = Load()
	assert.ErrorContains(t, err, "HATCH_RECOMPUTE_CULLED")
}
