// Package search implements top-K cosine similarity over stored vectors.
package search

import (
	"container/heap"
	"context"
	"sort"

	domainsearch "github.com/fluxkit/precedent/domain/search"
)

// cancelCheckInterval is how many candidates the scan processes between
// context checks. A dot product is cheap, so checking per item would cost
// more than the scan itself.
const cancelCheckInterval = 256

// Match holds a pattern id and its similarity to the query.
type Match struct {
	patternID  string
	similarity float64
}

// NewMatch creates a Match.
func NewMatch(patternID string, similarity float64) Match {
	return Match{patternID: patternID, similarity: similarity}
}

// PatternID returns the pattern identifier.
func (m Match) PatternID() string { return m.patternID }

// Similarity returns the similarity score.
func (m Match) Similarity() float64 { return m.similarity }

// matchHeap is a min-heap of matches keyed on similarity. Keeping the
// weakest match on top lets a scan hold at most k matches at a time.
type matchHeap []Match

func (h matchHeap) Len() int           { return len(h) }
func (h matchHeap) Less(i, j int) bool { return h[i].similarity < h[j].similarity }
func (h matchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *matchHeap) Push(x any)        { *h = append(*h, x.(Match)) }

func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// TopK scans stored vectors and returns the k most similar to the query,
// descending, dropping anything below minSimilarity. Both query and stored
// vectors are expected to be unit-normalized, so the dot product is the
// cosine similarity. The scan honors ctx cancellation between candidates.
func TopK(ctx context.Context, query domainsearch.Vector, vectors []domainsearch.StoredVector, k int, minSimilarity float64) ([]Match, error) {
	if len(vectors) == 0 || k <= 0 {
		return []Match{}, nil
	}

	top := &matchHeap{}
	heap.Init(top)

	for i, stored := range vectors {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		similarity := query.Dot(stored.Vector())
		if similarity < minSimilarity {
			continue
		}

		if top.Len() < k {
			heap.Push(top, NewMatch(stored.PatternID(), similarity))
			continue
		}
		if similarity > (*top)[0].similarity {
			(*top)[0] = NewMatch(stored.PatternID(), similarity)
			heap.Fix(top, 0)
		}
	}

	matches := make([]Match, top.Len())
	copy(matches, *top)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].similarity > matches[j].similarity
	})
	return matches, nil
}
