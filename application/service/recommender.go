package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fluxkit/precedent/domain/pattern"
	"github.com/fluxkit/precedent/domain/recommend"
	"github.com/fluxkit/precedent/domain/search"
)

// Searcher answers top-K similarity queries.
type Searcher interface {
	Search(ctx context.Context, query search.Vector, k int, filters search.Filters) ([]search.Result, error)
}

// Recommender answers natural-language queries with ranked, explained
// recommendations.
type Recommender struct {
	embedder search.Embedder
	searcher Searcher
	store    search.Store
	ranker   recommend.Ranker
	logger   *slog.Logger
}

// NewRecommender creates a Recommender.
func NewRecommender(embedder search.Embedder, searcher Searcher, store search.Store, ranker recommend.Ranker, logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommender{
		embedder: embedder,
		searcher: searcher,
		store:    store,
		ranker:   ranker,
		logger:   logger,
	}
}

// Recommend embeds the query, searches the store, and ranks the results.
// An empty or cold store yields an empty list, not an error.
func (s *Recommender) Recommend(ctx context.Context, query string, k int, filters search.Filters) ([]recommend.Recommendation, error) {
	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		// Inference can fail transiently while the runtime warms up.
		s.logger.Warn("query embedding failed, retrying once", slog.String("error", err.Error()))
		queryVector, err = s.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
	}

	results, err := s.searcher.Search(ctx, queryVector, k, filters)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(results) == 0 {
		return []recommend.Recommendation{}, nil
	}

	recommendations := s.ranker.Rank(time.Now(), results, s.metricsFor(ctx))

	s.logger.Debug("recommendation complete",
		slog.Int("results", len(results)),
		slog.Int("recommendations", len(recommendations)),
	)
	return recommendations, nil
}

// metricsFor adapts stored metrics into the ranker's lookup. Read failures
// degrade to "not observed" so a metrics hiccup cannot fail a query.
func (s *Recommender) metricsFor(ctx context.Context) recommend.MetricsLookup {
	return func(id string) (pattern.Metrics, bool) {
		m, found, err := s.store.Metrics(ctx, id)
		if err != nil {
			s.logger.Warn("metrics lookup failed",
				slog.String("pattern_id", id),
				slog.String("error", err.Error()),
			)
			return pattern.Metrics{}, false
		}
		return m, found
	}
}
