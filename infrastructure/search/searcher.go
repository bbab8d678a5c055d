package search

import (
	"context"
	"fmt"
	"log/slog"

	domainsearch "github.com/fluxkit/precedent/domain/search"
)

// Searcher answers top-K similarity queries against the store. The vector
// scan runs in memory; the store only prefilters candidates.
type Searcher struct {
	store         domainsearch.Store
	minSimilarity float64
	logger        *slog.Logger
}

// NewSearcher creates a Searcher. Matches below minSimilarity are dropped
// rather than padding out the result set.
func NewSearcher(store domainsearch.Store, minSimilarity float64, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{
		store:         store,
		minSimilarity: minSimilarity,
		logger:        logger,
	}
}

// Search returns up to k results most similar to the query vector,
// descending by similarity. An empty store yields an empty result set.
func (s *Searcher) Search(ctx context.Context, query domainsearch.Vector, k int, filters domainsearch.Filters) ([]domainsearch.Result, error) {
	if k <= 0 {
		return []domainsearch.Result{}, nil
	}

	candidates, err := s.store.CandidateIDs(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	if len(candidates) == 0 {
		return []domainsearch.Result{}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors, err := s.store.Vectors(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}

	matches, err := TopK(ctx, query.Normalized(), vectors, k, s.minSimilarity)
	if err != nil {
		return nil, err
	}

	results := make([]domainsearch.Result, 0, len(matches))
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, found, err := s.store.Pattern(ctx, match.PatternID())
		if err != nil {
			return nil, fmt.Errorf("load pattern %s: %w", match.PatternID(), err)
		}
		if !found {
			// Embedding without its pattern row should be impossible given
			// atomic inserts; log and move on rather than failing the query.
			s.logger.Warn("orphaned embedding", slog.String("pattern_id", match.PatternID()))
			continue
		}
		results = append(results, domainsearch.NewResult(p, match.Similarity()))
	}

	s.logger.Debug("similarity search complete",
		slog.Int("candidates", len(candidates)),
		slog.Int("results", len(results)),
	)

	return results, nil
}
