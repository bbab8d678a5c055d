package search

import (
	"math"
	"testing"
	"time"

	"github.com/fluxkit/precedent/domain/pattern"
)

func TestNewVector_DimensionCheck(t *testing.T) {
	if _, err := NewVector([]float64{1, 2, 3}, 4); err == nil {
		t.Fatal("expected dimension mismatch error")
	}

	v, err := NewVector([]float64{3, 4}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Norm() != 5 {
		t.Errorf("expected cached norm 5, got %v", v.Norm())
	}
}

func TestVector_Normalized(t *testing.T) {
	v, _ := NewVector([]float64{3, 4}, 2)
	u := v.Normalized()

	if !u.IsUnit() {
		t.Fatalf("expected unit vector, norm=%v", u.Norm())
	}
	vals := u.Values()
	if math.Abs(vals[0]-0.6) > 1e-9 || math.Abs(vals[1]-0.8) > 1e-9 {
		t.Errorf("unexpected components: %v", vals)
	}

	// Normalizing a unit vector is a no-op.
	again := u.Normalized()
	if math.Abs(again.Norm()-1) > NormEpsilon {
		t.Errorf("re-normalization drifted: %v", again.Norm())
	}

	// Zero vectors pass through unchanged rather than dividing by zero.
	z, _ := NewVector([]float64{0, 0}, 2)
	if z.Normalized().Norm() != 0 {
		t.Error("zero vector must stay zero")
	}
}

func TestVector_Dot(t *testing.T) {
	a, _ := NewVector([]float64{1, 2, 3}, 3)
	b, _ := NewVector([]float64{4, 5, 6}, 3)
	if got := a.Dot(b); got != 32 {
		t.Errorf("expected 32, got %v", got)
	}

	short, _ := NewVector([]float64{1, 2}, 2)
	if got := a.Dot(short); got != 0 {
		t.Errorf("mismatched dims must yield 0, got %v", got)
	}
}

func TestVector_ValuesAreCopied(t *testing.T) {
	raw := []float64{1, 0}
	v, _ := NewVector(raw, 2)
	raw[0] = 99
	if v.Values()[0] != 1 {
		t.Error("constructor must copy input")
	}

	vals := v.Values()
	vals[0] = 42
	if v.Values()[0] != 1 {
		t.Error("Values must return a copy")
	}
}

func TestFilters_Matches(t *testing.T) {
	ts := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	p := pattern.New("add jwt auth", "abc", []string{"internal/auth/jwt.go", "cmd/main.go"}, ts, []string{"go", "feat"})

	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{"empty matches all", NewFilters(), true},
		{"tag hit", NewFilters().WithTags("go"), true},
		{"tag any-of", NewFilters().WithTags("rust", "feat"), true},
		{"tag miss", NewFilters().WithTags("rust"), false},
		{"glob hit", NewFilters().WithPathGlob("internal/auth/*.go"), true},
		{"glob miss", NewFilters().WithPathGlob("docs/*"), false},
		{"window hit", NewFilters().WithTimeWindow(ts.AddDate(0, -1, 0), ts.AddDate(0, 1, 0)), true},
		{"before window", NewFilters().WithTimeWindow(ts.AddDate(0, 1, 0), time.Time{}), false},
		{"after window", NewFilters().WithTimeWindow(time.Time{}, ts.AddDate(0, -1, 0)), false},
		{"combined", NewFilters().WithTags("go").WithPathGlob("cmd/*.go"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Matches(p); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
