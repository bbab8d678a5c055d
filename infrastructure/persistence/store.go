package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fluxkit/precedent/domain/pattern"
	"github.com/fluxkit/precedent/domain/search"
	"github.com/fluxkit/precedent/internal/database"
)

// SchemaVersion is the current on-disk schema version. Stores created by a
// different version refuse to open; the recovery path is re-indexing from
// source history.
const SchemaVersion = 1

// ErrSchemaVersion indicates the store was created by an incompatible
// schema version.
var ErrSchemaVersion = errors.New("persistence: incompatible schema version")

// Store implements search.Store on gorm.
type Store struct {
	db     database.Database
	logger *slog.Logger
}

// NewStore migrates the schema, verifies the stored schema version, and
// returns the store.
func NewStore(ctx context.Context, db database.Database, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	session := db.Session(ctx)
	if err := session.AutoMigrate(&PatternModel{}, &EmbeddingModel{}, &MetricsModel{}, &SchemaInfoModel{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	var info SchemaInfoModel
	err := session.First(&info).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		info = SchemaInfoModel{ID: 1, Version: SchemaVersion}
		if err := session.Create(&info).Error; err != nil {
			return nil, fmt.Errorf("write schema version: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("read schema version: %w", err)
	case info.Version != SchemaVersion:
		return nil, fmt.Errorf("%w: store has %d, this build expects %d", ErrSchemaVersion, info.Version, SchemaVersion)
	}

	return &Store{db: db, logger: logger}, nil
}

// Insert atomically writes the pattern and its embedding.
func (s *Store) Insert(ctx context.Context, record search.Record) error {
	return s.InsertBatch(ctx, []search.Record{record})
}

// InsertBatch writes all records in one transaction, all-or-nothing.
// Existing rows are overwritten, which makes re-indexing idempotent.
func (s *Store) InsertBatch(ctx context.Context, records []search.Record) error {
	if len(records) == 0 {
		return nil
	}

	patterns := make([]PatternModel, len(records))
	embeddings := make([]EmbeddingModel, len(records))
	now := time.Now().UTC()
	for i, record := range records {
		patterns[i] = patternToModel(record.Pattern())
		embeddings[i] = EmbeddingModel{
			PatternID: record.Pattern().ID(),
			Vector:    Float64Slice(record.Vector().Values()),
			Norm:      record.Vector().Norm(),
			CreatedAt: now,
		}
	}

	return database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&patterns).Error; err != nil {
			return fmt.Errorf("insert patterns: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&embeddings).Error; err != nil {
			return fmt.Errorf("insert embeddings: %w", err)
		}
		return nil
	})
}

// Pattern retrieves pattern metadata by id.
func (s *Store) Pattern(ctx context.Context, id string) (pattern.Pattern, bool, error) {
	var model PatternModel
	err := s.db.Session(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pattern.Pattern{}, false, nil
	}
	if err != nil {
		return pattern.Pattern{}, false, fmt.Errorf("get pattern: %w", err)
	}
	return patternFromModel(model), true, nil
}

// Embedding retrieves an embedding by pattern id.
func (s *Store) Embedding(ctx context.Context, id string) (search.Vector, bool, error) {
	var model EmbeddingModel
	err := s.db.Session(ctx).Where("pattern_id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return search.Vector{}, false, nil
	}
	if err != nil {
		return search.Vector{}, false, fmt.Errorf("get embedding: %w", err)
	}

	vec, err := search.NewVector([]float64(model.Vector), len(model.Vector))
	if err != nil {
		return search.Vector{}, false, fmt.Errorf("rehydrate embedding %s: %w", id, err)
	}
	return vec, true, nil
}

// Metrics retrieves performance metrics by pattern id. Absence means the
// pattern has not been observed yet.
func (s *Store) Metrics(ctx context.Context, id string) (pattern.Metrics, bool, error) {
	var model MetricsModel
	err := s.db.Session(ctx).Where("pattern_id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pattern.Metrics{}, false, nil
	}
	if err != nil {
		return pattern.Metrics{}, false, fmt.Errorf("get metrics: %w", err)
	}
	return metricsFromModel(model), true, nil
}

// PatternIDs lists all stored pattern ids.
func (s *Store) PatternIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	if err := s.db.Session(ctx).Model(&PatternModel{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list pattern ids: %w", err)
	}
	return ids, nil
}

// CandidateIDs lists pattern ids satisfying the filters. Time bounds are
// pushed into SQL; tag and path restrictions are applied in memory because
// both live in JSON columns.
func (s *Store) CandidateIDs(ctx context.Context, filters search.Filters) ([]string, error) {
	if filters.IsEmpty() {
		return s.PatternIDs(ctx)
	}

	query := s.db.Session(ctx).Model(&PatternModel{}).Order("id")
	if since := filters.Since(); !since.IsZero() {
		query = query.Where("timestamp >= ?", since)
	}
	if until := filters.Until(); !until.IsZero() {
		query = query.Where("timestamp <= ?", until)
	}

	var models []PatternModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	ids := []string{}
	for _, model := range models {
		if filters.Matches(patternFromModel(model)) {
			ids = append(ids, model.ID)
		}
	}
	return ids, nil
}

// Vectors bulk-loads embeddings for the given pattern ids. Unknown ids are
// skipped.
func (s *Store) Vectors(ctx context.Context, ids []string) ([]search.StoredVector, error) {
	if len(ids) == 0 {
		return []search.StoredVector{}, nil
	}

	var models []EmbeddingModel
	err := s.db.Session(ctx).Where("pattern_id IN ?", ids).Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("load vectors: %w", err)
	}

	vectors := make([]search.StoredVector, 0, len(models))
	for _, model := range models {
		vec, err := search.NewVector([]float64(model.Vector), len(model.Vector))
		if err != nil {
			return nil, fmt.Errorf("rehydrate embedding %s: %w", model.PatternID, err)
		}
		vectors = append(vectors, search.NewStoredVector(model.PatternID, vec))
	}
	return vectors, nil
}

// UpdateMetrics upserts metrics for a pattern in its own transaction.
func (s *Store) UpdateMetrics(ctx context.Context, id string, m pattern.Metrics) error {
	model := metricsToModel(id, m)
	return database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model).Error; err != nil {
			return fmt.Errorf("upsert metrics: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored patterns.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.Session(ctx).Model(&PatternModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count patterns: %w", err)
	}
	return count, nil
}

var _ search.Store = (*Store)(nil)
