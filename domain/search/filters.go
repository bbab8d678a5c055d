package search

import (
	"path"
	"time"

	"github.com/fluxkit/precedent/domain/pattern"
)

// Filters narrows search candidates before any vector math. Zero values mean
// "no restriction".
type Filters struct {
	tags     []string
	pathGlob string
	since    time.Time
	until    time.Time
}

// NewFilters creates an empty Filters.
func NewFilters() Filters {
	return Filters{}
}

// WithTags returns Filters requiring membership in any of the given tags.
func (f Filters) WithTags(tags ...string) Filters {
	f.tags = append([]string(nil), tags...)
	return f
}

// WithPathGlob returns Filters requiring at least one file path to match the
// glob (path.Match syntax).
func (f Filters) WithPathGlob(glob string) Filters {
	f.pathGlob = glob
	return f
}

// WithTimeWindow returns Filters restricting pattern timestamps to
// [since, until]. A zero bound is open.
func (f Filters) WithTimeWindow(since, until time.Time) Filters {
	f.since = since
	f.until = until
	return f
}

// Tags returns the tag restriction (copy).
func (f Filters) Tags() []string {
	result := make([]string, len(f.tags))
	copy(result, f.tags)
	return result
}

// PathGlob returns the path glob restriction.
func (f Filters) PathGlob() string { return f.pathGlob }

// Since returns the lower time bound.
func (f Filters) Since() time.Time { return f.since }

// Until returns the upper time bound.
func (f Filters) Until() time.Time { return f.until }

// IsEmpty reports whether no restriction is set.
func (f Filters) IsEmpty() bool {
	return len(f.tags) == 0 && f.pathGlob == "" && f.since.IsZero() && f.until.IsZero()
}

// Matches reports whether a pattern satisfies every restriction.
func (f Filters) Matches(p pattern.Pattern) bool {
	if len(f.tags) > 0 {
		any := false
		for _, tag := range f.tags {
			if p.HasTag(tag) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}

	if f.pathGlob != "" {
		any := false
		for _, fp := range p.FilePaths() {
			if ok, err := path.Match(f.pathGlob, fp); err == nil && ok {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}

	if !f.since.IsZero() && p.Timestamp().Before(f.since) {
		return false
	}
	if !f.until.IsZero() && p.Timestamp().After(f.until) {
		return false
	}

	return true
}
