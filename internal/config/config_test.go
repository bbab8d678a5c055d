package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig()

	assert.Equal(t, "INFO", cfg.LogLevel())
	assert.Equal(t, LogFormatPretty, cfg.LogFormat())
	assert.Equal(t, ".", cfg.RepoPath())
	assert.Contains(t, cfg.DBURL(), "sqlite:///")

	scoring := cfg.Scoring()
	assert.InDelta(t, 0.5, scoring.SimilarityWeight(), 1e-9)
	assert.InDelta(t, 0.2, scoring.RecencyWeight(), 1e-9)
	assert.InDelta(t, 0.3, scoring.UsageWeight(), 1e-9)
	assert.InDelta(t, 0.75, scoring.MinSimilarity(), 1e-9)
	assert.InDelta(t, 180, scoring.RecencyWindowDays(), 1e-9)
}

func TestEnvConfig_ToAppConfig(t *testing.T) {
	t.Setenv("PRECEDENT_DATA_DIR", "/tmp/precedent-test")
	t.Setenv("PRECEDENT_LOG_FORMAT", "json")
	t.Setenv("PRECEDENT_MIN_SIMILARITY", "0.8")
	t.Setenv("PRECEDENT_TELEMETRY_BASE_URL", "http://localhost:5080")
	t.Setenv("PRECEDENT_TELEMETRY_WINDOW_DAYS", "7")

	envCfg, err := LoadFromEnv()
	require.NoError(t, err)

	cfg := envCfg.ToAppConfig()
	assert.Equal(t, "/tmp/precedent-test", cfg.DataDir())
	assert.Equal(t, "sqlite:////tmp/precedent-test/precedent.db", cfg.DBURL())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.InDelta(t, 0.8, cfg.Scoring().MinSimilarity(), 1e-9)
	assert.Equal(t, "http://localhost:5080", cfg.Telemetry().BaseURL())
	assert.Equal(t, 7*24.0, cfg.Telemetry().Window().Hours())
}

func TestEnvConfig_DBURLOverridesDataDir(t *testing.T) {
	t.Setenv("PRECEDENT_DATA_DIR", "/tmp/precedent-test")
	t.Setenv("PRECEDENT_DB_URL", "sqlite:///:memory:")

	envCfg, err := LoadFromEnv()
	require.NoError(t, err)

	cfg := envCfg.ToAppConfig()
	assert.Equal(t, "sqlite:///:memory:", cfg.DBURL())
}
