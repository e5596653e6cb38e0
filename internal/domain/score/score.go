// Package score holds the relevance value types used across ranking.
//
// Distance and Similarity are distinct types so that "lower is better" and
// "higher is better" values cannot be mixed by accident. Every ranking
// comparison goes through Similarity.
package score

import (
	"fmt"
	"math"

	"github.com/belljun3395/okchat/internal/domain"
)

// Score is anything that can be ranked. Comparisons are always done on the
// similarity view.
type Score interface {
	ToSimilarity() Similarity
}

// Distance is a vector-store dissimilarity in [0,1]: 0 = identical, 1 = unrelated.
type Distance struct {
	value float64
}

// NewDistance validates v and creates a Distance.
func NewDistance(v float64) (Distance, error) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return Distance{}, fmt.Errorf("%w: distance %v outside [0,1]", domain.ErrInvalidScore, v)
	}
	return Distance{value: v}, nil
}

// CoerceDistance clamps v into [0,1]. Used for untrusted vector-store output.
func CoerceDistance(v float64) Distance {
	switch {
	case math.IsNaN(v), v > 1:
		return Distance{value: 1}
	case v < 0:
		return Distance{value: 0}
	}
	return Distance{value: v}
}

// Value returns the raw distance.
func (d Distance) Value() float64 { return d.value }

// ToSimilarity converts the distance: similarity = 1 - distance.
func (d Distance) ToSimilarity() Similarity { return Similarity{value: 1 - d.value} }

// Closer reports whether d ranks ahead of other (smaller distance wins).
func (d Distance) Closer(other Distance) bool { return d.value < other.value }

func (d Distance) String() string { return fmt.Sprintf("distance(%.4f)", d.value) }

// Similarity is a relevance value, higher is better. Unbounded above once boosted.
type Similarity struct {
	value float64
}

// Zero is the neutral similarity.
var Zero = Similarity{}

// NewSimilarity validates v and creates a Similarity.
func NewSimilarity(v float64) (Similarity, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Similarity{}, fmt.Errorf("%w: similarity %v must be finite and >= 0", domain.ErrInvalidScore, v)
	}
	return Similarity{value: v}, nil
}

// CoerceSimilarity clamps negative or NaN input to 0.
func CoerceSimilarity(v float64) Similarity {
	if math.IsNaN(v) || v < 0 {
		return Zero
	}
	return Similarity{value: v}
}

// MustSimilarity panics on invalid input. Intended for constants and tests.
func MustSimilarity(v float64) Similarity {
	s, err := NewSimilarity(v)
	if err != nil {
		panic(err)
	}
	return s
}

// Value returns the raw similarity.
func (s Similarity) Value() float64 { return s.value }

// ToSimilarity implements Score.
func (s Similarity) ToSimilarity() Similarity { return s }

// Boost adds delta. Negative deltas are rejected.
func (s Similarity) Boost(delta float64) (Similarity, error) {
	if math.IsNaN(delta) || delta < 0 {
		return s, fmt.Errorf("%w: boost %v must be >= 0", domain.ErrInvalidScore, delta)
	}
	return Similarity{value: s.value + delta}, nil
}

// Multiply scales by factor. Negative factors are rejected.
func (s Similarity) Multiply(factor float64) (Similarity, error) {
	if math.IsNaN(factor) || factor < 0 {
		return s, fmt.Errorf("%w: factor %v must be >= 0", domain.ErrInvalidScore, factor)
	}
	return Similarity{value: s.value * factor}, nil
}

// Add sums two similarities.
func (s Similarity) Add(other Similarity) Similarity {
	return Similarity{value: s.value + other.value}
}

// Compare returns -1, 0 or 1 as a ranks below, equal to or above b.
// Both sides are normalized to similarity first.
func Compare(a, b Score) int {
	av, bv := a.ToSimilarity().value, b.ToSimilarity().value
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	}
	return 0
}

// Better reports whether a ranks strictly ahead of b.
func Better(a, b Score) bool { return Compare(a, b) > 0 }

func (s Similarity) String() string { return fmt.Sprintf("similarity(%.4f)", s.value) }

// Cosine returns the cosine similarity of two vectors clamped to [0,1].
// Mismatched or zero-length vectors yield Zero.
func Cosine(a, b []float32) Similarity {
	if len(a) == 0 || len(a) != len(b) {
		return Zero
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return Zero
	}
	return CoerceSimilarity(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
