package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Variables carry the PRECEDENT_ prefix; nested structs use underscore
// delimiters (e.g. PRECEDENT_TELEMETRY_BASE_URL).
type EnvConfig struct {
	// DataDir is the data directory path.
	// Env: PRECEDENT_DATA_DIR (default: ~/.precedent)
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: PRECEDENT_DB_URL
	// Default: sqlite:///{data_dir}/precedent.db
	DBURL string `envconfig:"DB_URL"`

	// ModelDir is the directory holding the frozen embedding model.
	// Env: PRECEDENT_MODEL_DIR (default: {data_dir}/models)
	ModelDir string `envconfig:"MODEL_DIR"`

	// RepoPath is the git repository to mine for patterns.
	// Env: PRECEDENT_REPO_PATH (default: .)
	RepoPath string `envconfig:"REPO_PATH" default:"."`

	// LogLevel is the log verbosity level.
	// Env: PRECEDENT_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: PRECEDENT_LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// SimilarityWeight is the weight given to raw similarity in ranking.
	// Env: PRECEDENT_SIMILARITY_WEIGHT (default: 0.5)
	SimilarityWeight float64 `envconfig:"SIMILARITY_WEIGHT" default:"0.5"`

	// RecencyWeight is the weight given to recency in ranking.
	// Env: PRECEDENT_RECENCY_WEIGHT (default: 0.2)
	RecencyWeight float64 `envconfig:"RECENCY_WEIGHT" default:"0.2"`

	// UsageWeight is the weight given to observed success in ranking.
	// Env: PRECEDENT_USAGE_WEIGHT (default: 0.3)
	UsageWeight float64 `envconfig:"USAGE_WEIGHT" default:"0.3"`

	// MinSimilarity is the search threshold; weaker matches are discarded.
	// Env: PRECEDENT_MIN_SIMILARITY (default: 0.75)
	MinSimilarity float64 `envconfig:"MIN_SIMILARITY" default:"0.75"`

	// RecencyWindowDays is the linear recency-decay window.
	// Env: PRECEDENT_RECENCY_WINDOW_DAYS (default: 180)
	RecencyWindowDays float64 `envconfig:"RECENCY_WINDOW_DAYS" default:"180"`

	// MinDiffLines is the minimum changed-line count for a commit to be indexed.
	// Env: PRECEDENT_MIN_DIFF_LINES (default: 10)
	MinDiffLines int `envconfig:"MIN_DIFF_LINES" default:"10"`

	// Telemetry configures the external metrics collector.
	Telemetry TelemetryEnv `envconfig:"TELEMETRY"`
}

// TelemetryEnv holds environment configuration for the telemetry collector.
type TelemetryEnv struct {
	// BaseURL is the collector base URL. Empty disables metrics refresh.
	// Env: PRECEDENT_TELEMETRY_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Org is the collector organization.
	// Env: PRECEDENT_TELEMETRY_ORG (default: default)
	Org string `envconfig:"ORG" default:"default"`

	// Token is the collector auth token.
	// Env: PRECEDENT_TELEMETRY_TOKEN
	Token string `envconfig:"TOKEN"`

	// WindowDays is the trailing aggregation window in days.
	// Env: PRECEDENT_TELEMETRY_WINDOW_DAYS (default: 30)
	WindowDays int `envconfig:"WINDOW_DAYS" default:"30"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("PRECEDENT", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts environment configuration into an AppConfig.
// Unset fields keep AppConfig defaults.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.DataDir != "" {
		cfg = cfg.WithDataDir(e.DataDir)
		cfg = cfg.WithDBURL("sqlite:///" + e.DataDir + "/precedent.db")
		cfg = cfg.WithModelDir(e.DataDir + "/models")
	}
	if e.DBURL != "" {
		cfg = cfg.WithDBURL(e.DBURL)
	}
	if e.ModelDir != "" {
		cfg = cfg.WithModelDir(e.ModelDir)
	}
	if e.RepoPath != "" {
		cfg = cfg.WithRepoPath(e.RepoPath)
	}

	cfg = cfg.WithLogLevel(strings.ToUpper(e.LogLevel))
	if strings.EqualFold(e.LogFormat, string(LogFormatJSON)) {
		cfg = cfg.WithLogFormat(LogFormatJSON)
	}

	scoring := NewScoringConfig().
		WithWeights(e.SimilarityWeight, e.RecencyWeight, e.UsageWeight).
		WithMinSimilarity(e.MinSimilarity).
		WithRecencyWindowDays(e.RecencyWindowDays)
	cfg = cfg.WithScoring(scoring)

	telemetry := NewTelemetryConfig().
		WithBaseURL(e.Telemetry.BaseURL).
		WithOrg(e.Telemetry.Org).
		WithToken(e.Telemetry.Token)
	if e.Telemetry.WindowDays > 0 {
		telemetry = telemetry.WithWindow(time.Duration(e.Telemetry.WindowDays) * 24 * time.Hour)
	}
	cfg = cfg.WithTelemetry(telemetry)

	if e.MinDiffLines > 0 {
		cfg = cfg.WithExtraction(NewExtractionConfig().WithMinDiffLines(e.MinDiffLines))
	}

	return cfg
}
