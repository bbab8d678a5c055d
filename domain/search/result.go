package search

import "github.com/fluxkit/precedent/domain/pattern"

// Result is one similarity match: a pattern and its cosine similarity to the
// query. Ordering and tie-breaking are left to the ranker so equal-similarity
// candidates both survive the search stage.
type Result struct {
	pattern    pattern.Pattern
	similarity float64
}

// NewResult creates a Result.
func NewResult(p pattern.Pattern, similarity float64) Result {
	return Result{pattern: p, similarity: similarity}
}

// Pattern returns the matched pattern.
func (r Result) Pattern() pattern.Pattern { return r.pattern }

// Similarity returns the cosine similarity score.
func (r Result) Similarity() float64 { return r.similarity }
