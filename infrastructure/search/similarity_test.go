package search

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsearch "github.com/fluxkit/precedent/domain/search"
)

func vec(t *testing.T, values ...float64) domainsearch.Vector {
	t.Helper()
	v, err := domainsearch.NewVector(values, len(values))
	require.NoError(t, err)
	return v.Normalized()
}

func stored(t *testing.T, id string, values ...float64) domainsearch.StoredVector {
	t.Helper()
	return domainsearch.NewStoredVector(id, vec(t, values...))
}

func TestTopKOrdering(t *testing.T) {
	query := vec(t, 1, 0, 0)
	vectors := []domainsearch.StoredVector{
		stored(t, "orthogonal", 0, 1, 0),
		stored(t, "exact", 1, 0, 0),
		stored(t, "close", 1, 0.2, 0),
		stored(t, "far", 1, 1, 1),
	}

	matches, err := TopK(context.Background(), query, vectors, 10, 0)
	require.NoError(t, err)
	require.Len(t, matches, 4)
	assert.Equal(t, "exact", matches[0].PatternID())
	assert.Equal(t, "close", matches[1].PatternID())
	assert.Equal(t, "far", matches[2].PatternID())
	assert.Equal(t, "orthogonal", matches[3].PatternID())
	assert.InDelta(t, 1.0, matches[0].Similarity(), 1e-9)
}

func TestTopKBoundsResultCount(t *testing.T) {
	query := vec(t, 1, 0)
	vectors := []domainsearch.StoredVector{
		stored(t, "a", 1, 0),
		stored(t, "b", 1, 0.1),
		stored(t, "c", 1, 0.2),
		stored(t, "d", 1, 0.3),
	}

	matches, err := TopK(context.Background(), query, vectors, 2, 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].PatternID())
	assert.Equal(t, "b", matches[1].PatternID())
}

func TestTopKThreshold(t *testing.T) {
	query := vec(t, 1, 0)
	vectors := []domainsearch.StoredVector{
		stored(t, "strong", 1, 0.1),
		stored(t, "weak", 1, 2),
		stored(t, "orthogonal", 0, 1),
	}

	// Fewer than k matches above the threshold returns only those, never
	// padded with weaker ones.
	matches, err := TopK(context.Background(), query, vectors, 3, 0.9)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "strong", matches[0].PatternID())
}

func TestTopKEdgeCases(t *testing.T) {
	query := vec(t, 1, 0)
	ctx := context.Background()

	matches, err := TopK(ctx, query, nil, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = TopK(ctx, query, []domainsearch.StoredVector{stored(t, "a", 1, 0)}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTopKCancelledScan(t *testing.T) {
	query := vec(t, 1, 0)
	vectors := []domainsearch.StoredVector{
		stored(t, "a", 1, 0),
		stored(t, "b", 0, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TopK(ctx, query, vectors, 5, 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTopKLargeScan(t *testing.T) {
	query := vec(t, 1, 0)

	vectors := make([]domainsearch.StoredVector, 0, 100)
	for i := 0; i < 100; i++ {
		angle := float64(i) * math.Pi / 200
		vectors = append(vectors, stored(t, string(rune('a'+i%26))+string(rune('0'+i/26)), math.Cos(angle), math.Sin(angle)))
	}

	matches, err := TopK(context.Background(), query, vectors, 5, 0)
	require.NoError(t, err)
	require.Len(t, matches, 5)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Similarity(), matches[i].Similarity())
	}
	assert.Equal(t, "a0", matches[0].PatternID())
}
