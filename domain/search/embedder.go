package search

import "context"

// Embedder converts text into fixed-dimension, L2-normalized vectors.
// Implementations are safe for concurrent use; the model is loaded once and
// shared read-only across callers.
type Embedder interface {
	// Embed converts a single text. Over-length input is truncated
	// deterministically, never rejected.
	Embed(ctx context.Context, text string) (Vector, error)

	// EmbedBatch converts several texts, producing the same vectors as
	// repeated Embed calls.
	EmbedBatch(ctx context.Context, texts []string) ([]Vector, error)

	// Dim returns the model's fixed output dimension.
	Dim() int
}
