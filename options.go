package precedent

import (
	"log/slog"
	"path/filepath"

	"github.com/fluxkit/precedent/domain/search"
	"github.com/fluxkit/precedent/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	app      config.AppConfig
	embedder search.Embedder
	logger   *slog.Logger
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		app: config.NewAppConfig(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite stores patterns in a SQLite database at path.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.app = c.app.WithDBURL("sqlite:///" + path)
	}
}

// WithPostgres stores patterns in PostgreSQL. The URL must be a
// postgres:// connection string.
func WithPostgres(url string) Option {
	return func(c *clientConfig) {
		c.app = c.app.WithDBURL(url)
	}
}

// WithDataDir overrides the base directory for the database and model
// cache (default ~/.precedent). Database and model paths re-derive from
// the new directory; later options still override them individually.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.app = c.app.
			WithDataDir(dir).
			WithDBURL("sqlite:///" + filepath.Join(dir, "precedent.db")).
			WithModelDir(filepath.Join(dir, "models"))
	}
}

// WithRepository sets the repository to mine (default current directory).
func WithRepository(path string) Option {
	return func(c *clientConfig) {
		c.app = c.app.WithRepoPath(path)
	}
}

// WithModelDir overrides where ONNX model files are looked up.
func WithModelDir(dir string) Option {
	return func(c *clientConfig) {
		c.app = c.app.WithModelDir(dir)
	}
}

// WithWeights sets the scoring weights. They are normalized to sum to 1.0
// at ranking time.
func WithWeights(similarity, recency, usage float64) Option {
	return func(c *clientConfig) {
		c.app = c.app.WithScoring(
			c.app.Scoring().WithWeights(similarity, recency, usage),
		)
	}
}

// WithRecencyWindow sets the recency decay window in days.
func WithRecencyWindow(days float64) Option {
	return func(c *clientConfig) {
		c.app = c.app.WithScoring(c.app.Scoring().WithRecencyWindowDays(days))
	}
}

// WithMinSimilarity sets the similarity floor below which matches are
// dropped entirely.
func WithMinSimilarity(threshold float64) Option {
	return func(c *clientConfig) {
		c.app = c.app.WithScoring(c.app.Scoring().WithMinSimilarity(threshold))
	}
}

// WithMinDiffLines sets the minimum changed-line count a commit needs to
// be extracted.
func WithMinDiffLines(lines int) Option {
	return func(c *clientConfig) {
		c.app = c.app.WithExtraction(c.app.Extraction().WithMinDiffLines(lines))
	}
}

// WithTelemetry enables metrics refresh against an OpenObserve-compatible
// backend.
func WithTelemetry(cfg config.TelemetryConfig) Option {
	return func(c *clientConfig) {
		c.app = c.app.WithTelemetry(cfg)
	}
}

// WithConfig replaces the whole application configuration, typically one
// loaded from the environment.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.app = cfg
	}
}

// WithEmbedder replaces the local ONNX embedder, mainly for tests.
func WithEmbedder(e search.Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithLogger sets the logger used by all components.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
