package precedent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxkit/precedent/domain/search"
)

// staticEmbedder replaces the ONNX runtime in tests with a fixed vector.
type staticEmbedder struct {
	vec search.Vector
}

func newStaticEmbedder(t *testing.T) *staticEmbedder {
	t.Helper()
	vec, err := search.NewVector([]float64{1, 0, 0}, 3)
	require.NoError(t, err)
	return &staticEmbedder{vec: vec}
}

func (s *staticEmbedder) Embed(context.Context, string) (search.Vector, error) {
	return s.vec, nil
}

func (s *staticEmbedder) EmbedBatch(_ context.Context, texts []string) ([]search.Vector, error) {
	vectors := make([]search.Vector, len(texts))
	for i := range texts {
		vectors[i] = s.vec
	}
	return vectors, nil
}

func (s *staticEmbedder) Dim() int { return 3 }

func seedRepository(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	work, err := repo.Worktree()
	require.NoError(t, err)

	when := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		file := fmt.Sprintf("svc/handler%d.go", i)
		content := ""
		for line := 0; line < 15; line++ {
			content += fmt.Sprintf("// change %d line %d\n", i, line)
		}
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "svc"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
		_, err = work.Add(file)
		require.NoError(t, err)

		sig := &object.Signature{Name: "Dev", Email: "dev@example.com", When: when.Add(time.Duration(i) * time.Hour)}
		_, err = work.Commit(fmt.Sprintf("feat: add handler %d", i), &gogit.CommitOptions{Author: sig, Committer: sig})
		require.NoError(t, err)
	}

	return dir
}

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := New(context.Background(),
		WithDataDir(t.TempDir()),
		WithSQLite(":memory:"),
		WithRepository(seedRepository(t)),
		WithEmbedder(newStaticEmbedder(t)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, client.Close()) })
	return client
}

func TestClientIndexAndRecommend(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	report, err := client.Index.IndexRecent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Extracted)
	assert.Equal(t, 3, report.Indexed)

	count, err := client.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	recommendations, err := client.Recommend.Recommend(ctx, "add a handler", 2, search.NewFilters())
	require.NoError(t, err)
	assert.Len(t, recommendations, 2)
	assert.NotEmpty(t, recommendations[0].Explanation())
}

func TestClientPatternLookup(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.Index.IndexRecent(ctx, 10)
	require.NoError(t, err)

	recommendations, err := client.Recommend.Recommend(ctx, "add a handler", 1, search.NewFilters())
	require.NoError(t, err)
	require.Len(t, recommendations, 1)

	got, ok, err := client.Pattern(ctx, recommendations[0].Pattern().ID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, recommendations[0].Pattern().ID(), got.ID())

	_, ok, err = client.Pattern(ctx, "no-such-pattern")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClientColdStoreRecommendation(t *testing.T) {
	client := newTestClient(t)

	recommendations, err := client.Recommend.Recommend(context.Background(), "anything", 5, search.NewFilters())
	require.NoError(t, err)
	assert.Empty(t, recommendations)
}

func TestClientRefreshMetricsUnconfigured(t *testing.T) {
	client := newTestClient(t)

	_, err := client.RefreshMetrics(context.Background())
	require.ErrorIs(t, err, ErrTelemetryNotConfigured)
}

func TestClientConfigDefaults(t *testing.T) {
	client := newTestClient(t)

	cfg := client.Config()
	assert.InDelta(t, 0.5, cfg.Scoring().SimilarityWeight(), 1e-9)
	assert.InDelta(t, 0.75, cfg.Scoring().MinSimilarity(), 1e-9)
	assert.Equal(t, 10, cfg.Extraction().MinDiffLines())
}
