// Package persistence implements the durable vector store on gorm,
// backed by SQLite or PostgreSQL.
package persistence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fluxkit/precedent/domain/pattern"
)

// Float64Slice stores a vector as a JSON column.
type Float64Slice []float64

// Scan implements sql.Scanner for reading JSON.
func (f *Float64Slice) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Float64Slice", value)
	}

	return json.Unmarshal(data, f)
}

// Value implements driver.Valuer for writing JSON.
func (f Float64Slice) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// StringSlice stores a list of strings as a JSON column.
type StringSlice []string

// Scan implements sql.Scanner for reading JSON.
func (s *StringSlice) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}

	return json.Unmarshal(data, s)
}

// Value implements driver.Valuer for writing JSON.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// PatternModel is the patterns table row.
type PatternModel struct {
	ID          string      `gorm:"column:id;primaryKey"`
	Description string      `gorm:"column:description;not null"`
	SourceRef   string      `gorm:"column:source_ref;index;not null"`
	FilePaths   StringSlice `gorm:"column:file_paths;type:json"`
	Timestamp   time.Time   `gorm:"column:timestamp;index"`
	Tags        StringSlice `gorm:"column:tags;type:json"`
}

// TableName returns the patterns table name.
func (PatternModel) TableName() string { return "patterns" }

// EmbeddingModel is the embeddings table row. The norm column records the
// magnitude at write time so readers can assert the unit-norm invariant.
type EmbeddingModel struct {
	PatternID string       `gorm:"column:pattern_id;primaryKey"`
	Vector    Float64Slice `gorm:"column:vector;type:json;not null"`
	Norm      float64      `gorm:"column:norm;not null"`
	CreatedAt time.Time    `gorm:"column:created_at"`
}

// TableName returns the embeddings table name.
func (EmbeddingModel) TableName() string { return "embeddings" }

// MetricsModel is the metrics table row.
type MetricsModel struct {
	PatternID     string    `gorm:"column:pattern_id;primaryKey"`
	UsageCount    uint64    `gorm:"column:usage_count;not null"`
	ErrorRate     float64   `gorm:"column:error_rate;not null"`
	AvgLatencyMs  float64   `gorm:"column:avg_latency_ms;not null"`
	P95LatencyMs  float64   `gorm:"column:p95_latency_ms;not null"`
	LastRefreshed time.Time `gorm:"column:last_refreshed"`
}

// TableName returns the metrics table name.
func (MetricsModel) TableName() string { return "metrics" }

// SchemaInfoModel is the single-row schema version table.
type SchemaInfoModel struct {
	ID      int64 `gorm:"column:id;primaryKey"`
	Version int   `gorm:"column:version;not null"`
}

// TableName returns the schema info table name.
func (SchemaInfoModel) TableName() string { return "schema_info" }

func patternToModel(p pattern.Pattern) PatternModel {
	return PatternModel{
		ID:          p.ID(),
		Description: p.Description(),
		SourceRef:   p.SourceRef(),
		FilePaths:   StringSlice(p.FilePaths()),
		Timestamp:   p.Timestamp(),
		Tags:        StringSlice(p.Tags()),
	}
}

func patternFromModel(m PatternModel) pattern.Pattern {
	return pattern.Restore(m.ID, m.Description, m.SourceRef, []string(m.FilePaths), m.Timestamp, []string(m.Tags))
}

func metricsToModel(id string, m pattern.Metrics) MetricsModel {
	return MetricsModel{
		PatternID:     id,
		UsageCount:    m.UsageCount(),
		ErrorRate:     m.ErrorRate(),
		AvgLatencyMs:  m.AvgLatencyMs(),
		P95LatencyMs:  m.P95LatencyMs(),
		LastRefreshed: m.LastRefreshed(),
	}
}

func metricsFromModel(m MetricsModel) pattern.Metrics {
	return pattern.NewMetrics(m.UsageCount, m.ErrorRate, m.AvgLatencyMs, m.P95LatencyMs, m.LastRefreshed)
}
