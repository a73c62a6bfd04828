// Package metric provides vector similarity measures.
package metric

import (
	"errors"

	"github.com/viterin/vek"
)

// ErrSizeMismatch is returned when two vectors differ in length.
var ErrSizeMismatch = errors.New("vector sizes do not match")

// Magnitude calculates the Euclidean length of v.
func Magnitude(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return vek.Norm(v)
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// It is 0 when either vector is zero.
func CosineSimilarity(v1, v2 []float64) (float64, error) {
	if len(v1) != len(v2) {
		return 0, ErrSizeMismatch
	}

	magnitudeA := Magnitude(v1)
	magnitudeB := Magnitude(v2)

	// Avoid division by zero
	if magnitudeA == 0 || magnitudeB == 0 {
		return 0, nil
	}

	return vek.Dot(v1, v2) / (magnitudeA * magnitudeB), nil
}

// SquaredL2 calculates the squared Euclidean distance between two vectors.
func SquaredL2(v1, v2 []float64) (float64, error) {
	if len(v1) != len(v2) {
		return 0, ErrSizeMismatch
	}
	if len(v1) == 0 {
		return 0, nil
	}
	d := vek.Distance(v1, v2)
	return d * d, nil
}
