package search

import (
	"context"

	"github.com/fluxkit/precedent/domain/pattern"
)

// Record pairs a pattern with its embedding for insertion. The two are
// persisted atomically; a reader never observes one without the other.
type Record struct {
	pattern pattern.Pattern
	vector  Vector
}

// NewRecord creates a Record.
func NewRecord(p pattern.Pattern, v Vector) Record {
	return Record{pattern: p, vector: v}
}

// Pattern returns the pattern.
func (r Record) Pattern() pattern.Pattern { return r.pattern }

// Vector returns the embedding.
func (r Record) Vector() Vector { return r.vector }

// StoredVector is an embedding loaded for scanning, keyed by pattern id.
type StoredVector struct {
	patternID string
	vector    Vector
}

// NewStoredVector creates a StoredVector.
func NewStoredVector(patternID string, v Vector) StoredVector {
	return StoredVector{patternID: patternID, vector: v}
}

// PatternID returns the pattern identifier.
func (s StoredVector) PatternID() string { return s.patternID }

// Vector returns the embedding.
func (s StoredVector) Vector() Vector { return s.vector }

// Store is the durable vector store: three logical tables (embeddings,
// pattern metadata, metrics) co-keyed by pattern id. Absence is reported as
// (zero, false, nil), never as an error. The store is a derived cache of
// history plus telemetry; full rebuild from source is always a valid
// recovery path.
type Store interface {
	// Insert atomically writes the pattern and its embedding. Either both
	// persist or neither does.
	Insert(ctx context.Context, record Record) error

	// InsertBatch writes all records in a single transaction, all-or-nothing,
	// making bulk re-indexing safe to retry.
	InsertBatch(ctx context.Context, records []Record) error

	// Pattern retrieves pattern metadata by id.
	Pattern(ctx context.Context, id string) (pattern.Pattern, bool, error)

	// Embedding retrieves an embedding by pattern id.
	Embedding(ctx context.Context, id string) (Vector, bool, error)

	// Metrics retrieves performance metrics by pattern id. Absence means
	// "not yet observed", not failure.
	Metrics(ctx context.Context, id string) (pattern.Metrics, bool, error)

	// PatternIDs lists all stored pattern ids, supporting full-scan search.
	PatternIDs(ctx context.Context) ([]string, error)

	// CandidateIDs lists pattern ids satisfying the filters. With empty
	// filters this equals PatternIDs.
	CandidateIDs(ctx context.Context, filters Filters) ([]string, error)

	// Vectors bulk-loads embeddings for the given pattern ids. Unknown ids
	// are skipped.
	Vectors(ctx context.Context, ids []string) ([]StoredVector, error)

	// UpdateMetrics upserts metrics for a pattern in its own transaction,
	// independent of pattern/embedding writes.
	UpdateMetrics(ctx context.Context, id string, m pattern.Metrics) error

	// Count returns the number of stored patterns.
	Count(ctx context.Context) (int64, error)
}
