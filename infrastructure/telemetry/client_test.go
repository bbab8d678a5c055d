package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaintelemetry "github.com/fluxkit/precedent/domain/telemetry"
	"github.com/fluxkit/precedent/internal/config"
)

func testConfig(baseURL string) config.TelemetryConfig {
	return config.NewTelemetryConfig().
		WithBaseURL(baseURL).
		WithOrg("default").
		WithToken("secret-token")
}

func TestClientAggregates(t *testing.T) {
	var gotPath, gotAuth string
	var gotRequest searchRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		response := searchResponse{Hits: []searchHit{
			{PatternID: "p1", AvgLatencyMs: 120, P95LatencyMs: 340, UsageCount: 40, ErrorCount: 2},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	aggregates, err := client.Aggregates(context.Background(), []string{"p1", "p2"}, 30*24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, "/api/default/search", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Contains(t, gotRequest.Query.SQL, "GROUP BY pattern_id")
	assert.Greater(t, gotRequest.Query.EndTime, gotRequest.Query.StartTime)

	require.Len(t, aggregates, 2)
	assert.Equal(t, "p1", aggregates[0].PatternID)
	assert.Equal(t, uint64(40), aggregates[0].UsageCount)
	assert.InDelta(t, 0.05, aggregates[0].ErrorRate, 1e-9)
	assert.InDelta(t, 120, aggregates[0].AvgLatencyMs, 1e-9)

	// No recorded activity is a zero-valued aggregate, not an error.
	assert.Equal(t, "p2", aggregates[1].PatternID)
	assert.Equal(t, uint64(0), aggregates[1].UsageCount)
	assert.Zero(t, aggregates[1].ErrorRate)
}

func TestClientRetriesOnce(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(searchResponse{}))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	aggregates, err := client.Aggregates(context.Background(), []string{"p1"}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, aggregates, 1)
}

func TestClientUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	_, err := client.Aggregates(context.Background(), []string{"p1"}, time.Hour)
	require.ErrorIs(t, err, domaintelemetry.ErrUnavailable)
}

func TestClientNoIDs(t *testing.T) {
	client := NewClient(testConfig("http://localhost:0"), nil)
	aggregates, err := client.Aggregates(context.Background(), nil, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, aggregates)
}
