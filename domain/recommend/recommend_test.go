package recommend

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxkit/precedent/domain/pattern"
	"github.com/fluxkit/precedent/domain/search"
)

func testPattern(t *testing.T, description string, age time.Duration, now time.Time) pattern.Pattern {
	t.Helper()
	return pattern.New(description, "abc123def456", []string{"main.go"}, now.Add(-age), []string{"go", "feat"})
}

func noMetrics(string) (pattern.Metrics, bool) {
	return pattern.Metrics{}, false
}

func TestNewWeights(t *testing.T) {
	tests := []struct {
		name                     string
		sim, rec, usage          float64
		wantSim, wantRec, wantUs float64
	}{
		{"already normalized", 0.5, 0.2, 0.3, 0.5, 0.2, 0.3},
		{"normalizes to unit sum", 5, 2, 3, 0.5, 0.2, 0.3},
		{"zero total falls back to defaults", 0, 0, 0, 0.5, 0.2, 0.3},
		{"negative total falls back to defaults", -1, 0, 0, 0.5, 0.2, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWeights(tt.sim, tt.rec, tt.usage)
			assert.InDelta(t, tt.wantSim, w.Similarity(), 1e-9)
			assert.InDelta(t, tt.wantRec, w.Recency(), 1e-9)
			assert.InDelta(t, tt.wantUs, w.Usage(), 1e-9)
		})
	}
}

func TestRecencyScore(t *testing.T) {
	tests := []struct {
		name    string
		ageDays float64
		want    float64
	}{
		{"brand new", 0, 1},
		{"half window", 90, 0.5},
		{"at window", 180, 0},
		{"beyond window clamps to zero", 400, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RecencyScore(tt.ageDays, 180), 1e-9)
		})
	}
}

func TestUsageScore(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		metrics pattern.Metrics
		want    float64
	}{
		{"perfect", pattern.NewMetrics(10, 0, 0, 0, now), 1},
		{"neutral defaults", pattern.NeutralMetrics(), 0.8},
		{"latency penalty", pattern.NewMetrics(10, 0, 500, 600, now), 0.5},
		{"latency penalty capped", pattern.NewMetrics(10, 0, 5000, 6000, now), 0.5},
		{"errors and latency compound", pattern.NewMetrics(10, 0.5, 500, 600, now), 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, UsageScore(tt.metrics), 1e-9)
		})
	}
}

func TestRankRecencyMonotonic(t *testing.T) {
	now := time.Now()
	ranker := NewRanker(DefaultWeights(), 180)

	fresh := testPattern(t, "fix: recent handler leak", 2*24*time.Hour, now)
	stale := testPattern(t, "fix: ancient handler leak", 200*24*time.Hour, now)

	results := []search.Result{
		search.NewResult(stale, 0.82),
		search.NewResult(fresh, 0.82),
	}

	recs := ranker.Rank(now, results, noMetrics)
	require.Len(t, recs, 2)
	assert.Equal(t, fresh.ID(), recs[0].Pattern().ID())
	assert.Greater(t, recs[0].FinalScore(), recs[1].FinalScore())
}

func TestRankHighSimilarityFloor(t *testing.T) {
	now := time.Now()
	ranker := NewRanker(DefaultWeights(), 180)

	ancient := testPattern(t, "feat: near exact historical match", 400*24*time.Hour, now)
	fresh := testPattern(t, "feat: loosely related recent work", 1*24*time.Hour, now)

	results := []search.Result{
		search.NewResult(fresh, 0.78),
		search.NewResult(ancient, 0.95),
	}

	recs := ranker.Rank(now, results, noMetrics)
	require.Len(t, recs, 2)
	assert.Equal(t, ancient.ID(), recs[0].Pattern().ID())
	assert.GreaterOrEqual(t, recs[0].FinalScore(), 0.95)
}

func TestRankUsesMetricsWhenAvailable(t *testing.T) {
	now := time.Now()
	ranker := NewRanker(DefaultWeights(), 180)

	healthy := testPattern(t, "feat: reliable retry helper", 24*time.Hour, now)
	flaky := testPattern(t, "feat: flaky retry helper", 24*time.Hour, now)

	metrics := map[string]pattern.Metrics{
		healthy.ID(): pattern.NewMetrics(50, 0.01, 100, 150, now),
		flaky.ID():   pattern.NewMetrics(50, 0.60, 100, 150, now),
	}
	lookup := func(id string) (pattern.Metrics, bool) {
		m, ok := metrics[id]
		return m, ok
	}

	results := []search.Result{
		search.NewResult(flaky, 0.85),
		search.NewResult(healthy, 0.85),
	}

	recs := ranker.Rank(now, results, lookup)
	require.Len(t, recs, 2)
	assert.Equal(t, healthy.ID(), recs[0].Pattern().ID())
	assert.Greater(t, recs[0].UsageScore(), recs[1].UsageScore())
}

func TestRankTieBreaksTowardRecent(t *testing.T) {
	now := time.Now()
	ranker := NewRanker(NewWeights(1, 0, 0), 180)

	older := testPattern(t, "chore: identical twin a", 60*24*time.Hour, now)
	newer := testPattern(t, "chore: identical twin b", 5*24*time.Hour, now)

	results := []search.Result{
		search.NewResult(older, 0.8),
		search.NewResult(newer, 0.8),
	}

	recs := ranker.Rank(now, results, noMetrics)
	require.Len(t, recs, 2)
	assert.Equal(t, newer.ID(), recs[0].Pattern().ID())
}

func TestExplanationFormat(t *testing.T) {
	now := time.Now()
	ranker := NewRanker(DefaultWeights(), 180)

	p := testPattern(t, "fix: close response body", 3*24*time.Hour, now)
	metrics := map[string]pattern.Metrics{
		p.ID(): pattern.NewMetrics(12, 0.05, 120, 200, now),
	}
	lookup := func(id string) (pattern.Metrics, bool) {
		m, ok := metrics[id]
		return m, ok
	}

	recs := ranker.Rank(now, []search.Result{search.NewResult(p, 0.913)}, lookup)
	require.Len(t, recs, 1)

	explanation := recs[0].Explanation()
	assert.Contains(t, explanation, "Pattern from abc123d")
	assert.Contains(t, explanation, "fix: close response body")
	assert.Contains(t, explanation, "Similarity: 91.3%")
	assert.Contains(t, explanation, "3 days ago")
	assert.Contains(t, explanation, "12 times")
	assert.True(t, strings.Contains(explanation, "feat, go") || strings.Contains(explanation, "go, feat"))
}

func TestRankEmptyResults(t *testing.T) {
	ranker := NewRanker(DefaultWeights(), 180)
	recs := ranker.Rank(time.Now(), nil, noMetrics)
	assert.Empty(t, recs)
}
