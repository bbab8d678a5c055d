// Package precedent recommends proven past work for a new task. It mines
// a repository's history into patterns, embeds them with a local ONNX
// model, stores the vectors durably, and answers natural-language queries
// with ranked, explained recommendations.
//
// Basic usage:
//
//	client, err := precedent.New(ctx,
//	    precedent.WithRepository("/path/to/repo"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Index recent history
//	report, err := client.Index.IndexRecent(ctx, 100)
//
//	// Ask for precedent
//	recs, err := client.Recommend.Recommend(ctx, "add retry logic to the http client", 5, search.NewFilters())
//	for _, rec := range recs {
//	    fmt.Println(rec.Explanation())
//	}
package precedent

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fluxkit/precedent/application/service"
	"github.com/fluxkit/precedent/domain/pattern"
	"github.com/fluxkit/precedent/domain/recommend"
	domainsearch "github.com/fluxkit/precedent/domain/search"
	"github.com/fluxkit/precedent/infrastructure/git"
	"github.com/fluxkit/precedent/infrastructure/persistence"
	"github.com/fluxkit/precedent/infrastructure/provider"
	infrasearch "github.com/fluxkit/precedent/infrastructure/search"
	"github.com/fluxkit/precedent/infrastructure/telemetry"
	"github.com/fluxkit/precedent/internal/config"
	"github.com/fluxkit/precedent/internal/database"
	"github.com/fluxkit/precedent/internal/log"
)

// ErrTelemetryNotConfigured is returned by RefreshMetrics when no
// telemetry backend was configured.
var ErrTelemetryNotConfigured = errors.New("precedent: telemetry backend not configured")

// Client is the main entry point for the precedent library.
//
// Access operations via struct fields:
//
//	client.Index.IndexRecent(ctx, 100)
//	client.Recommend.Recommend(ctx, "query", 5, filters)
type Client struct {
	// Index mines history into stored, embedded patterns.
	Index *service.Indexer
	// Recommend answers queries with ranked recommendations.
	Recommend *service.Recommender

	aggregator *service.Aggregator
	store      domainsearch.Store
	db         database.Database
	embedder   interface{ Close() error }
	cfg        config.AppConfig
}

// New creates a Client. The data directory is created if missing; the
// database schema is migrated on open.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	c := newClientConfig()
	for _, opt := range opts {
		opt(c)
	}

	logger := c.logger
	if logger == nil {
		logger = log.New(c.app)
	}

	if err := os.MkdirAll(c.app.DataDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := database.New(ctx, c.app.DBURL())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store, err := persistence.NewStore(ctx, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	embedder := c.embedder
	var embedderCloser interface{ Close() error }
	if embedder == nil {
		hugotEmbedder := provider.NewHugotEmbedder(
			c.app.ModelDir(),
			config.DefaultEmbeddingDim,
			config.DefaultMaxInputChars,
		)
		embedder = hugotEmbedder
		embedderCloser = hugotEmbedder
	}

	scoring := c.app.Scoring()
	searcher := infrasearch.NewSearcher(store, scoring.MinSimilarity(), logger)
	ranker := recommend.NewRanker(
		recommend.NewWeights(scoring.SimilarityWeight(), scoring.RecencyWeight(), scoring.UsageWeight()),
		scoring.RecencyWindowDays(),
	)
	miner := git.NewExtractor(c.app.RepoPath(), c.app.Extraction().MinDiffLines(), logger)

	client := &Client{
		Index:     service.NewIndexer(miner, embedder, store, logger),
		Recommend: service.NewRecommender(embedder, searcher, store, ranker, logger),
		store:     store,
		db:        db,
		embedder:  embedderCloser,
		cfg:       c.app,
	}

	if telemetryCfg := c.app.Telemetry(); telemetryCfg.BaseURL() != "" {
		source := telemetry.NewClient(telemetryCfg, logger)
		client.aggregator = service.NewAggregator(source, store, telemetryCfg.Window(), logger)
	}

	return client, nil
}

// RefreshMetrics pulls windowed telemetry aggregates and persists them.
// With no ids it refreshes every stored pattern; with ids it refreshes
// only that subset.
func (c *Client) RefreshMetrics(ctx context.Context, ids ...string) (service.RefreshReport, error) {
	if c.aggregator == nil {
		return service.RefreshReport{}, ErrTelemetryNotConfigured
	}
	return c.aggregator.RefreshMetrics(ctx, ids)
}

// Pattern retrieves a stored pattern by id. The second return is false
// when no such pattern exists.
func (c *Client) Pattern(ctx context.Context, id string) (pattern.Pattern, bool, error) {
	return c.store.Pattern(ctx, id)
}

// Count returns the number of stored patterns.
func (c *Client) Count(ctx context.Context) (int64, error) {
	return c.store.Count(ctx)
}

// Config returns the resolved application configuration.
func (c *Client) Config() config.AppConfig {
	return c.cfg
}

// Close releases the database connection and the inference runtime.
func (c *Client) Close() error {
	var errs []error
	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
