// Package service wires extraction, inference, storage, search, and
// ranking into the operations the CLI exposes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fluxkit/precedent/domain/pattern"
	"github.com/fluxkit/precedent/domain/search"
)

// Miner extracts patterns from history.
type Miner interface {
	ExtractRecent(ctx context.Context, count int) ([]pattern.Pattern, error)
	ExtractByDateRange(ctx context.Context, since, until time.Time) ([]pattern.Pattern, error)
	ExtractByPath(ctx context.Context, glob string) ([]pattern.Pattern, error)
}

// IndexReport summarizes one indexing run.
type IndexReport struct {
	Extracted int
	Indexed   int
}

// Indexer turns history into stored, embedded patterns.
type Indexer struct {
	miner    Miner
	embedder search.Embedder
	store    search.Store
	workers  int
	logger   *slog.Logger
}

// NewIndexer creates an Indexer. Embedding runs on at most
// max(1, NumCPU-1) concurrent workers so indexing never starves the
// host completely.
func NewIndexer(miner Miner, embedder search.Embedder, store search.Store, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		miner:    miner,
		embedder: embedder,
		store:    store,
		workers:  max(1, runtime.NumCPU()-1),
		logger:   logger,
	}
}

// IndexRecent extracts the most recent qualifying changes and indexes them.
func (s *Indexer) IndexRecent(ctx context.Context, count int) (IndexReport, error) {
	patterns, err := s.miner.ExtractRecent(ctx, count)
	if err != nil {
		return IndexReport{}, fmt.Errorf("extract recent: %w", err)
	}
	return s.index(ctx, patterns)
}

// IndexDateRange extracts changes inside [since, until] and indexes them.
func (s *Indexer) IndexDateRange(ctx context.Context, since, until time.Time) (IndexReport, error) {
	patterns, err := s.miner.ExtractByDateRange(ctx, since, until)
	if err != nil {
		return IndexReport{}, fmt.Errorf("extract by date range: %w", err)
	}
	return s.index(ctx, patterns)
}

// IndexByPath extracts changes touching files matching the glob and
// indexes them.
func (s *Indexer) IndexByPath(ctx context.Context, glob string) (IndexReport, error) {
	patterns, err := s.miner.ExtractByPath(ctx, glob)
	if err != nil {
		return IndexReport{}, fmt.Errorf("extract by path: %w", err)
	}
	return s.index(ctx, patterns)
}

func (s *Indexer) index(ctx context.Context, patterns []pattern.Pattern) (IndexReport, error) {
	report := IndexReport{Extracted: len(patterns)}
	if len(patterns) == 0 {
		return report, nil
	}

	s.logger.Info("embedding extracted patterns",
		slog.Int("patterns", len(patterns)),
		slog.Int("workers", s.workers),
	)

	vectors := make([]search.Vector, len(patterns))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	chunkSize := (len(patterns) + s.workers - 1) / s.workers
	for start := 0; start < len(patterns); start += chunkSize {
		end := min(start+chunkSize, len(patterns))
		group.Go(func() error {
			return s.embedChunk(groupCtx, patterns[start:end], vectors[start:end])
		})
	}
	if err := group.Wait(); err != nil {
		return report, fmt.Errorf("embed patterns: %w", err)
	}

	records := make([]search.Record, len(patterns))
	for i, p := range patterns {
		records[i] = search.NewRecord(p, vectors[i])
	}
	if err := s.store.InsertBatch(ctx, records); err != nil {
		return report, fmt.Errorf("store patterns: %w", err)
	}

	report.Indexed = len(records)
	s.logger.Info("indexing complete", slog.Int("indexed", report.Indexed))
	return report, nil
}

func (s *Indexer) embedChunk(ctx context.Context, patterns []pattern.Pattern, out []search.Vector) error {
	texts := make([]string, len(patterns))
	for i, p := range patterns {
		texts[i] = embedText(p)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		// Inference can fail transiently while the runtime warms up.
		s.logger.Warn("embedding batch failed, retrying once", slog.String("error", err.Error()))
		vectors, err = s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
	}
	if len(vectors) != len(patterns) {
		return fmt.Errorf("expected %d vectors, got %d", len(patterns), len(vectors))
	}

	copy(out, vectors)
	return nil
}

// embedText composes the text handed to the model. Deterministic so
// re-indexing the same history yields the same vectors.
func embedText(p pattern.Pattern) string {
	var b strings.Builder
	b.WriteString(p.Description())
	if paths := p.FilePaths(); len(paths) > 0 {
		b.WriteString("\nfiles: ")
		b.WriteString(strings.Join(paths, " "))
	}
	if tags := p.Tags(); len(tags) > 0 {
		b.WriteString("\ntags: ")
		b.WriteString(strings.Join(tags, " "))
	}
	return b.String()
}
