package pattern

import "time"

// NeutralErrorRate is assumed for patterns with no telemetry yet, so new
// patterns are neither boosted nor suppressed.
const NeutralErrorRate = 0.2

// Metrics holds observed operational performance for a pattern over a
// trailing telemetry window. Refreshed periodically; absence means "not yet
// observed", not zero.
type Metrics struct {
	usageCount    uint64
	errorRate     float64
	avgLatencyMs  float64
	p95LatencyMs  float64
	lastRefreshed time.Time
}

// NewMetrics creates Metrics from telemetry aggregates.
// errorRate is clamped to [0,1]; latencies are clamped to non-negative.
func NewMetrics(usageCount uint64, errorRate, avgLatencyMs, p95LatencyMs float64, lastRefreshed time.Time) Metrics {
	return Metrics{
		usageCount:    usageCount,
		errorRate:     clamp01(errorRate),
		avgLatencyMs:  max(avgLatencyMs, 0),
		p95LatencyMs:  max(p95LatencyMs, 0),
		lastRefreshed: lastRefreshed,
	}
}

// NeutralMetrics returns the documented neutral defaults used when no
// telemetry exists for a pattern.
func NeutralMetrics() Metrics {
	return Metrics{errorRate: NeutralErrorRate}
}

// UsageCount returns how many times the pattern was surfaced or used.
func (m Metrics) UsageCount() uint64 { return m.usageCount }

// ErrorRate returns the observed error fraction in [0,1].
func (m Metrics) ErrorRate() float64 { return m.errorRate }

// AvgLatencyMs returns the mean observed latency in milliseconds.
func (m Metrics) AvgLatencyMs() float64 { return m.avgLatencyMs }

// P95LatencyMs returns the 95th-percentile observed latency in milliseconds.
func (m Metrics) P95LatencyMs() float64 { return m.p95LatencyMs }

// LastRefreshed returns the time of the most recent telemetry pull.
func (m Metrics) LastRefreshed() time.Time { return m.lastRefreshed }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
