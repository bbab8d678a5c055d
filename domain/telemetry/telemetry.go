// Package telemetry defines the contract for performance metric sources.
package telemetry

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the metrics backend could not be reached.
// Existing stored metrics must be left untouched when this is returned.
var ErrUnavailable = errors.New("telemetry: source unavailable")

// Aggregate is the windowed summary of a pattern's observed behaviour.
type Aggregate struct {
	PatternID    string
	UsageCount   uint64
	ErrorRate    float64
	AvgLatencyMs float64
	P95LatencyMs float64
}

// Source provides windowed performance aggregates for patterns. A pattern
// with no recorded activity yields a zero-usage Aggregate, not an error.
type Source interface {
	// Aggregates fetches summaries for the given pattern ids over the
	// window ending at now.
	Aggregates(ctx context.Context, ids []string, window time.Duration) ([]Aggregate, error)
}
