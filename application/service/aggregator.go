package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fluxkit/precedent/domain/pattern"
	"github.com/fluxkit/precedent/domain/search"
	"github.com/fluxkit/precedent/domain/telemetry"
)

// RefreshReport summarizes one metrics refresh run.
type RefreshReport struct {
	Patterns int
	Updated  int
}

// Aggregator pulls windowed telemetry aggregates and persists them as
// pattern metrics.
type Aggregator struct {
	source telemetry.Source
	store  search.Store
	window time.Duration
	logger *slog.Logger
}

// NewAggregator creates an Aggregator querying the given window.
func NewAggregator(source telemetry.Source, store search.Store, window time.Duration, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		source: source,
		store:  store,
		window: window,
		logger: logger,
	}
}

// RefreshMetrics fetches aggregates for the given pattern ids and upserts
// them; an empty id list refreshes every stored pattern. When the telemetry
// backend is unreachable the stored metrics are left untouched and the
// error is returned; ranking keeps working on the last refreshed values.
func (s *Aggregator) RefreshMetrics(ctx context.Context, ids []string) (RefreshReport, error) {
	if len(ids) == 0 {
		var err error
		ids, err = s.store.PatternIDs(ctx)
		if err != nil {
			return RefreshReport{}, fmt.Errorf("list patterns: %w", err)
		}
	}

	report := RefreshReport{Patterns: len(ids)}
	if len(ids) == 0 {
		return report, nil
	}

	aggregates, err := s.source.Aggregates(ctx, ids, s.window)
	if err != nil {
		return report, fmt.Errorf("fetch aggregates: %w", err)
	}

	now := time.Now().UTC()
	for _, aggregate := range aggregates {
		// Zero usage means the pattern was never observed in the window.
		// Leaving the row absent keeps the ranker on its neutral defaults
		// instead of treating silence as a perfect record.
		if aggregate.UsageCount == 0 {
			continue
		}

		m := pattern.NewMetrics(
			aggregate.UsageCount,
			aggregate.ErrorRate,
			aggregate.AvgLatencyMs,
			aggregate.P95LatencyMs,
			now,
		)
		if err := s.store.UpdateMetrics(ctx, aggregate.PatternID, m); err != nil {
			return report, fmt.Errorf("update metrics for %s: %w", aggregate.PatternID, err)
		}
		report.Updated++
	}

	s.logger.Info("metrics refresh complete",
		slog.Int("patterns", report.Patterns),
		slog.Int("updated", report.Updated),
	)
	return report, nil
}
