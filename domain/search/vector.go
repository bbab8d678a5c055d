// Package search provides vector types, search filters, and the store
// contract for similarity retrieval.
package search

import (
	"errors"
	"fmt"
	"math"
)

// NormEpsilon is the tolerance within which a stored vector's L2 norm must
// equal 1.0.
const NormEpsilon = 1e-5

// ErrDimensionMismatch indicates a vector of the wrong length, usually a
// corrupted or wrong model artifact. Mismatches are never silently coerced.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Vector is a fixed-length embedding. Values are treated as immutable once
// constructed.
type Vector struct {
	values []float64
	norm   float64
}

// NewVector creates a Vector from raw components, verifying the expected
// dimension and caching the L2 norm.
func NewVector(values []float64, dim int) (Vector, error) {
	if len(values) != dim {
		return Vector{}, fmt.Errorf("%w: expected %d components, got %d", ErrDimensionMismatch, dim, len(values))
	}
	cp := make([]float64, len(values))
	copy(cp, values)
	return Vector{values: cp, norm: l2Norm(cp)}, nil
}

// Normalized returns a unit-length copy of the vector. Zero vectors are
// returned unchanged.
func (v Vector) Normalized() Vector {
	if math.Abs(v.norm-1) <= NormEpsilon || v.norm == 0 {
		return v
	}
	scaled := make([]float64, len(v.values))
	for i, x := range v.values {
		scaled[i] = x / v.norm
	}
	return Vector{values: scaled, norm: 1}
}

// Values returns the vector components (copy).
func (v Vector) Values() []float64 {
	result := make([]float64, len(v.values))
	copy(result, v.values)
	return result
}

// Norm returns the cached L2 norm.
func (v Vector) Norm() float64 { return v.norm }

// Dim returns the vector length.
func (v Vector) Dim() int { return len(v.values) }

// IsUnit reports whether the vector is unit-length within NormEpsilon.
func (v Vector) IsUnit() bool {
	return math.Abs(v.norm-1) <= NormEpsilon
}

// Dot returns the dot product with another vector of equal dimension.
// For two unit vectors this equals their cosine similarity.
func (v Vector) Dot(other Vector) float64 {
	if len(v.values) != len(other.values) {
		return 0
	}
	var sum float64
	for i, x := range v.values {
		sum += x * other.values[i]
	}
	return sum
}

func l2Norm(values []float64) float64 {
	var sum float64
	for _, x := range values {
		sum += x * x
	}
	return math.Sqrt(sum)
}
