// Package recommend turns similarity results into ranked, explained
// recommendations by combining similarity, recency, and observed success.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fluxkit/precedent/domain/pattern"
	"github.com/fluxkit/precedent/domain/search"
)

// Default scoring parameters.
const (
	DefaultSimilarityWeight = 0.5
	DefaultRecencyWeight    = 0.2
	DefaultUsageWeight      = 0.3
	DefaultWindowDays       = 180

	// HighSimilarityFloor lets a near-exact match rank on its raw similarity
	// even when recency and usage would discount it, so a rare historical
	// match beyond the window can still surface.
	HighSimilarityFloor = 0.90

	// latencyPenaltyCapMs caps the latency contribution to the usage score:
	// anything at or above one second costs the maximum 0.5 penalty.
	latencyPenaltyCapMs = 1000
)

// scoreEpsilon bounds float comparisons when breaking ties.
const scoreEpsilon = 1e-9

// Weights holds the three scoring weights, normalized to sum to 1.0.
type Weights struct {
	similarity float64
	recency    float64
	usage      float64
}

// DefaultWeights returns the default 0.5/0.2/0.3 split.
func DefaultWeights() Weights {
	return Weights{
		similarity: DefaultSimilarityWeight,
		recency:    DefaultRecencyWeight,
		usage:      DefaultUsageWeight,
	}
}

// NewWeights creates Weights, normalizing the inputs to sum to 1.0.
// Non-positive totals fall back to the defaults.
func NewWeights(similarity, recency, usage float64) Weights {
	total := similarity + recency + usage
	if total <= 0 {
		return DefaultWeights()
	}
	return Weights{
		similarity: similarity / total,
		recency:    recency / total,
		usage:      usage / total,
	}
}

// Similarity returns the similarity weight.
func (w Weights) Similarity() float64 { return w.similarity }

// Recency returns the recency weight.
func (w Weights) Recency() float64 { return w.recency }

// Usage returns the usage weight.
func (w Weights) Usage() float64 { return w.usage }

// Recommendation is a ranked result with its score breakdown and a
// deterministic human-readable explanation. Transient, never persisted.
type Recommendation struct {
	pattern         pattern.Pattern
	similarityScore float64
	recencyScore    float64
	usageScore      float64
	finalScore      float64
	explanation     string
}

// Pattern returns the recommended pattern.
func (r Recommendation) Pattern() pattern.Pattern { return r.pattern }

// SimilarityScore returns the cosine similarity component.
func (r Recommendation) SimilarityScore() float64 { return r.similarityScore }

// RecencyScore returns the recency component in [0,1].
func (r Recommendation) RecencyScore() float64 { return r.recencyScore }

// UsageScore returns the observed-success component in [0,1].
func (r Recommendation) UsageScore() float64 { return r.usageScore }

// FinalScore returns the combined score.
func (r Recommendation) FinalScore() float64 { return r.finalScore }

// Explanation returns the human-readable score justification.
func (r Recommendation) Explanation() string { return r.explanation }

// MetricsLookup resolves performance metrics for a pattern id. A false
// second return means "not yet observed"; the ranker then applies the
// documented neutral defaults.
type MetricsLookup func(id string) (pattern.Metrics, bool)

// Ranker re-scores similarity results.
type Ranker struct {
	weights    Weights
	windowDays float64
}

// NewRanker creates a Ranker. A non-positive window falls back to the
// default 180 days.
func NewRanker(weights Weights, windowDays float64) Ranker {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return Ranker{weights: weights, windowDays: windowDays}
}

// Rank scores results and returns recommendations ordered by final score
// descending. Equal final scores break toward the more recent pattern.
func (r Ranker) Rank(now time.Time, results []search.Result, metricsFor MetricsLookup) []Recommendation {
	recommendations := make([]Recommendation, 0, len(results))

	for _, result := range results {
		p := result.Pattern()

		metrics, ok := metricsFor(p.ID())
		if !ok {
			metrics = pattern.NeutralMetrics()
		}

		similarity := result.Similarity()
		recency := RecencyScore(p.AgeDays(now), r.windowDays)
		usage := UsageScore(metrics)

		final := r.weights.similarity*similarity +
			r.weights.recency*recency +
			r.weights.usage*usage

		// Near-exact matches rank at least on raw similarity, so age and
		// missing telemetry cannot bury them.
		if similarity >= HighSimilarityFloor {
			final = math.Max(final, similarity)
		}

		recommendations = append(recommendations, Recommendation{
			pattern:         p,
			similarityScore: similarity,
			recencyScore:    recency,
			usageScore:      usage,
			finalScore:      final,
			explanation:     explain(p, now, similarity, metrics),
		})
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		a, b := recommendations[i], recommendations[j]
		if math.Abs(a.finalScore-b.finalScore) > scoreEpsilon {
			return a.finalScore > b.finalScore
		}
		return a.pattern.Timestamp().After(b.pattern.Timestamp())
	})

	return recommendations
}

// RecencyScore computes the linear window decay: 1.0 for a brand-new
// pattern, 0.0 at and beyond the window.
func RecencyScore(ageDays, windowDays float64) float64 {
	if ageDays <= 0 {
		return 1
	}
	return math.Max(0, 1-ageDays/windowDays)
}

// UsageScore derives the observed-success component from metrics:
// (1 - errorRate) * (1 - min(avgLatencyMs/1000, 0.5)).
func UsageScore(m pattern.Metrics) float64 {
	latencyPenalty := math.Min(m.AvgLatencyMs()/latencyPenaltyCapMs, 0.5)
	return (1 - m.ErrorRate()) * (1 - latencyPenalty)
}

func explain(p pattern.Pattern, now time.Time, similarity float64, metrics pattern.Metrics) string {
	ageDays := int64(p.AgeDays(now))
	if ageDays < 0 {
		ageDays = 0
	}
	return fmt.Sprintf(
		"Pattern from %s (%s): %s - Similarity: %.1f%%, Recency: %d days ago, Usage: %d times",
		p.ShortSourceRef(),
		strings.Join(p.Tags(), ", "),
		p.Description(),
		similarity*100,
		ageDays,
		metrics.UsageCount(),
	)
}
