// Package telemetry queries an OpenObserve-compatible backend for pattern
// performance aggregates.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	domaintelemetry "github.com/fluxkit/precedent/domain/telemetry"
	"github.com/fluxkit/precedent/internal/config"
)

const recommendationsStream = "precedent_recommendations"

type searchRequest struct {
	Query sqlQuery `json:"query"`
}

type sqlQuery struct {
	SQL       string `json:"sql"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	From      int    `json:"from"`
	Size      int    `json:"size"`
}

type searchResponse struct {
	Hits []searchHit `json:"hits"`
}

type searchHit struct {
	PatternID    string  `json:"pattern_id"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	P95LatencyMs float64 `json:"p95_latency_ms"`
	UsageCount   uint64  `json:"usage_count"`
	ErrorCount   float64 `json:"error_count"`
}

// Client fetches windowed aggregates from an OpenObserve search API.
// Implements telemetry.Source.
type Client struct {
	cfg    config.TelemetryConfig
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client. The HTTP timeout comes from the config.
func NewClient(cfg config.TelemetryConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

// Aggregates queries the backend for per-pattern summaries over the window
// ending now. Every requested id yields an Aggregate; ids with no recorded
// activity come back zero-valued rather than erroring. Backend failures
// return ErrUnavailable after one retry.
func (c *Client) Aggregates(ctx context.Context, ids []string, window time.Duration) ([]domaintelemetry.Aggregate, error) {
	if len(ids) == 0 {
		return []domaintelemetry.Aggregate{}, nil
	}

	response, err := c.search(ctx, window)
	if err != nil {
		// One retry covers transient collector hiccups; a second failure
		// means the backend is down for real.
		c.logger.Warn("telemetry query failed, retrying once", slog.String("error", err.Error()))
		response, err = c.search(ctx, window)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domaintelemetry.ErrUnavailable, err)
		}
	}

	byID := make(map[string]searchHit, len(response.Hits))
	for _, hit := range response.Hits {
		byID[hit.PatternID] = hit
	}

	aggregates := make([]domaintelemetry.Aggregate, 0, len(ids))
	for _, id := range ids {
		hit, ok := byID[id]
		if !ok {
			aggregates = append(aggregates, domaintelemetry.Aggregate{PatternID: id})
			continue
		}

		errorRate := 0.0
		if hit.UsageCount > 0 {
			errorRate = hit.ErrorCount / float64(hit.UsageCount)
		}
		aggregates = append(aggregates, domaintelemetry.Aggregate{
			PatternID:    id,
			UsageCount:   hit.UsageCount,
			ErrorRate:    errorRate,
			AvgLatencyMs: hit.AvgLatencyMs,
			P95LatencyMs: hit.P95LatencyMs,
		})
	}

	return aggregates, nil
}

func (c *Client) search(ctx context.Context, window time.Duration) (searchResponse, error) {
	now := time.Now()
	request := searchRequest{
		Query: sqlQuery{
			SQL: fmt.Sprintf(`
SELECT
  pattern_id,
  AVG(latency_ms) AS avg_latency_ms,
  approx_percentile_cont(latency_ms, 0.95) AS p95_latency_ms,
  COUNT(*) AS usage_count,
  SUM(CASE WHEN error = true THEN 1 ELSE 0 END) AS error_count
FROM %s
GROUP BY pattern_id
ORDER BY usage_count DESC`, recommendationsStream),
			StartTime: now.Add(-window).UnixMicro(),
			EndTime:   now.UnixMicro(),
			From:      0,
			Size:      1000,
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		return searchResponse{}, fmt.Errorf("encode search request: %w", err)
	}

	url := fmt.Sprintf("%s/api/%s/search", c.cfg.BaseURL(), c.cfg.Org())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return searchResponse{}, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.cfg.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return searchResponse{}, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return searchResponse{}, fmt.Errorf("search request: unexpected status %s", resp.Status)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return searchResponse{}, fmt.Errorf("decode search response: %w", err)
	}
	return parsed, nil
}

var _ domaintelemetry.Source = (*Client)(nil)
