// Package pattern provides the core domain types for recorded units of work.
package pattern

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// MaxDescriptionLen bounds synthesized pattern descriptions.
const MaxDescriptionLen = 512

// ChangeType classifies the kind of change a pattern was extracted from.
type ChangeType string

// ChangeType values. Conventional-commit prefixes map onto these; anything
// else lands in ChangeUnclassified and is still indexed.
const (
	ChangeFeature      ChangeType = "feat"
	ChangeFix          ChangeType = "fix"
	ChangeDocs         ChangeType = "docs"
	ChangeStyle        ChangeType = "style"
	ChangeRefactor     ChangeType = "refactor"
	ChangePerf         ChangeType = "perf"
	ChangeTest         ChangeType = "test"
	ChangeChore        ChangeType = "chore"
	ChangeBuild        ChangeType = "build"
	ChangeCI           ChangeType = "ci"
	ChangeUnclassified ChangeType = "unclassified"
)

// String returns the change type as a string.
func (c ChangeType) String() string { return string(c) }

// Pattern is an immutable unit of recorded work extracted from history.
// A later similar change produces a new Pattern, never a mutation.
type Pattern struct {
	id          string
	description string
	sourceRef   string
	filePaths   []string
	timestamp   time.Time
	tags        []string
}

// New creates a Pattern. The id is derived from description and sourceRef,
// filePaths are deduplicated and sorted, tags are deduplicated and sorted.
// The description is truncated to MaxDescriptionLen runes.
func New(description, sourceRef string, filePaths []string, timestamp time.Time, tags []string) Pattern {
	description = truncate(description, MaxDescriptionLen)
	return Pattern{
		id:          DeriveID(sourceRef, description),
		description: description,
		sourceRef:   sourceRef,
		filePaths:   dedupeSorted(filePaths),
		timestamp:   timestamp,
		tags:        dedupeSorted(tags),
	}
}

// DeriveID computes the stable content-derived pattern identifier:
// hex(SHA-256(sourceRef || description)).
func DeriveID(sourceRef, description string) string {
	h := sha256.New()
	h.Write([]byte(sourceRef))
	h.Write([]byte(description))
	return hex.EncodeToString(h.Sum(nil))
}

// ID returns the stable pattern identifier.
func (p Pattern) ID() string { return p.id }

// Description returns the synthesized natural-language summary.
func (p Pattern) Description() string { return p.description }

// SourceRef returns the opaque reference to the originating change.
func (p Pattern) SourceRef() string { return p.sourceRef }

// ShortSourceRef returns an abbreviated source reference for display.
func (p Pattern) ShortSourceRef() string {
	if len(p.sourceRef) > 7 {
		return p.sourceRef[:7]
	}
	return p.sourceRef
}

// FilePaths returns the affected paths (copy).
func (p Pattern) FilePaths() []string {
	result := make([]string, len(p.filePaths))
	copy(result, p.filePaths)
	return result
}

// Timestamp returns the creation time of the originating change.
func (p Pattern) Timestamp() time.Time { return p.timestamp }

// Tags returns the classification tags (copy).
func (p Pattern) Tags() []string {
	result := make([]string, len(p.tags))
	copy(result, p.tags)
	return result
}

// HasTag reports whether the pattern carries the given tag.
func (p Pattern) HasTag(tag string) bool {
	for _, t := range p.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AgeDays returns the pattern age in fractional days relative to now.
func (p Pattern) AgeDays(now time.Time) float64 {
	return now.Sub(p.timestamp).Hours() / 24
}

// Restore rebuilds a Pattern from persisted fields without re-deriving the id.
// Persistence is the only intended caller; the stored id is trusted.
func Restore(id, description, sourceRef string, filePaths []string, timestamp time.Time, tags []string) Pattern {
	return Pattern{
		id:          id,
		description: description,
		sourceRef:   sourceRef,
		filePaths:   filePaths,
		timestamp:   timestamp,
		tags:        tags,
	}
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

func dedupeSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}
