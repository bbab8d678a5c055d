// Package config provides application configuration.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultLogLevel          = "INFO"
	DefaultEmbeddingDim      = 768
	DefaultMaxInputChars     = 2048
	DefaultMinSimilarity     = 0.75
	DefaultSimilarityWeight  = 0.5
	DefaultRecencyWeight     = 0.2
	DefaultUsageWeight       = 0.3
	DefaultRecencyWindowDays = 180
	DefaultTelemetryWindow   = 30 * 24 * time.Hour
	DefaultTelemetryTimeout  = 10 * time.Second
	DefaultMinDiffLines      = 10
	DefaultSearchLimit       = 5
	DefaultNeutralErrorRate  = 0.2
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// DefaultDataDir returns the default data directory (~/.precedent).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".precedent"
	}
	return filepath.Join(home, ".precedent")
}

// ScoringConfig holds the ranking weights and thresholds.
type ScoringConfig struct {
	similarityWeight  float64
	recencyWeight     float64
	usageWeight       float64
	minSimilarity     float64
	recencyWindowDays float64
}

// NewScoringConfig creates a ScoringConfig with defaults.
func NewScoringConfig() ScoringConfig {
	return ScoringConfig{
		similarityWeight:  DefaultSimilarityWeight,
		recencyWeight:     DefaultRecencyWeight,
		usageWeight:       DefaultUsageWeight,
		minSimilarity:     DefaultMinSimilarity,
		recencyWindowDays: DefaultRecencyWindowDays,
	}
}

// SimilarityWeight returns the similarity weight.
func (s ScoringConfig) SimilarityWeight() float64 { return s.similarityWeight }

// RecencyWeight returns the recency weight.
func (s ScoringConfig) RecencyWeight() float64 { return s.recencyWeight }

// UsageWeight returns the usage weight.
func (s ScoringConfig) UsageWeight() float64 { return s.usageWeight }

// MinSimilarity returns the minimum similarity threshold for search results.
func (s ScoringConfig) MinSimilarity() float64 { return s.minSimilarity }

// RecencyWindowDays returns the recency decay window in days.
func (s ScoringConfig) RecencyWindowDays() float64 { return s.recencyWindowDays }

// WithWeights returns a new config with the specified weights.
func (s ScoringConfig) WithWeights(similarity, recency, usage float64) ScoringConfig {
	s.similarityWeight = similarity
	s.recencyWeight = recency
	s.usageWeight = usage
	return s
}

// WithMinSimilarity returns a new config with the specified threshold.
func (s ScoringConfig) WithMinSimilarity(threshold float64) ScoringConfig {
	s.minSimilarity = threshold
	return s
}

// WithRecencyWindowDays returns a new config with the specified window.
func (s ScoringConfig) WithRecencyWindowDays(days float64) ScoringConfig {
	s.recencyWindowDays = days
	return s
}

// TelemetryConfig configures the external telemetry collector connection.
type TelemetryConfig struct {
	baseURL string
	org     string
	token   string
	window  time.Duration
	timeout time.Duration
}

// NewTelemetryConfig creates a TelemetryConfig with defaults.
func NewTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		org:     "default",
		window:  DefaultTelemetryWindow,
		timeout: DefaultTelemetryTimeout,
	}
}

// BaseURL returns the collector base URL (empty when telemetry is unconfigured).
func (t TelemetryConfig) BaseURL() string { return t.baseURL }

// Org returns the collector organization.
func (t TelemetryConfig) Org() string { return t.org }

// Token returns the collector auth token.
func (t TelemetryConfig) Token() string { return t.token }

// Window returns the trailing aggregation window.
func (t TelemetryConfig) Window() time.Duration { return t.window }

// Timeout returns the per-request timeout.
func (t TelemetryConfig) Timeout() time.Duration { return t.timeout }

// WithBaseURL returns a new config with the specified base URL.
func (t TelemetryConfig) WithBaseURL(url string) TelemetryConfig {
	t.baseURL = url
	return t
}

// WithOrg returns a new config with the specified organization.
func (t TelemetryConfig) WithOrg(org string) TelemetryConfig {
	t.org = org
	return t
}

// WithToken returns a new config with the specified token.
func (t TelemetryConfig) WithToken(token string) TelemetryConfig {
	t.token = token
	return t
}

// WithWindow returns a new config with the specified window.
func (t TelemetryConfig) WithWindow(d time.Duration) TelemetryConfig {
	t.window = d
	return t
}

// ExtractionConfig configures the pattern extractor.
type ExtractionConfig struct {
	minDiffLines int
}

// NewExtractionConfig creates an ExtractionConfig with defaults.
func NewExtractionConfig() ExtractionConfig {
	return ExtractionConfig{minDiffLines: DefaultMinDiffLines}
}

// MinDiffLines returns the minimum changed-line count for a commit to be indexed.
func (e ExtractionConfig) MinDiffLines() int { return e.minDiffLines }

// WithMinDiffLines returns a new config with the specified threshold.
func (e ExtractionConfig) WithMinDiffLines(n int) ExtractionConfig {
	e.minDiffLines = n
	return e
}

// AppConfig is the root application configuration.
type AppConfig struct {
	dataDir    string
	dbURL      string
	modelDir   string
	repoPath   string
	logLevel   string
	logFormat  LogFormat
	scoring    ScoringConfig
	telemetry  TelemetryConfig
	extraction ExtractionConfig
}

// NewAppConfig creates an AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		dataDir:    dataDir,
		dbURL:      "sqlite:///" + filepath.Join(dataDir, "precedent.db"),
		modelDir:   filepath.Join(dataDir, "models"),
		repoPath:   ".",
		logLevel:   DefaultLogLevel,
		logFormat:  LogFormatPretty,
		scoring:    NewScoringConfig(),
		telemetry:  NewTelemetryConfig(),
		extraction: NewExtractionConfig(),
	}
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// ModelDir returns the embedding model directory.
func (c AppConfig) ModelDir() string { return c.modelDir }

// RepoPath returns the git repository path to mine.
func (c AppConfig) RepoPath() string { return c.repoPath }

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// Scoring returns the scoring configuration.
func (c AppConfig) Scoring() ScoringConfig { return c.scoring }

// Telemetry returns the telemetry configuration.
func (c AppConfig) Telemetry() TelemetryConfig { return c.telemetry }

// Extraction returns the extraction configuration.
func (c AppConfig) Extraction() ExtractionConfig { return c.extraction }

// WithDataDir returns a new config with the specified data directory.
func (c AppConfig) WithDataDir(dir string) AppConfig {
	c.dataDir = dir
	return c
}

// WithDBURL returns a new config with the specified database URL.
func (c AppConfig) WithDBURL(url string) AppConfig {
	c.dbURL = url
	return c
}

// WithModelDir returns a new config with the specified model directory.
func (c AppConfig) WithModelDir(dir string) AppConfig {
	c.modelDir = dir
	return c
}

// WithRepoPath returns a new config with the specified repository path.
func (c AppConfig) WithRepoPath(path string) AppConfig {
	c.repoPath = path
	return c
}

// WithScoring returns a new config with the specified scoring configuration.
func (c AppConfig) WithScoring(s ScoringConfig) AppConfig {
	c.scoring = s
	return c
}

// WithTelemetry returns a new config with the specified telemetry configuration.
func (c AppConfig) WithTelemetry(t TelemetryConfig) AppConfig {
	c.telemetry = t
	return c
}

// WithExtraction returns a new config with the specified extraction configuration.
func (c AppConfig) WithExtraction(e ExtractionConfig) AppConfig {
	c.extraction = e
	return c
}

// WithLogLevel returns a new config with the specified log level.
func (c AppConfig) WithLogLevel(level string) AppConfig {
	c.logLevel = level
	return c
}

// WithLogFormat returns a new config with the specified log format.
func (c AppConfig) WithLogFormat(format LogFormat) AppConfig {
	c.logFormat = format
	return c
}
