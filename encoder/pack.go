package encoder

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PackedLen returns the number of values in a packed k × k symmetric matrix.
func PackedLen(k int) int {
	return k * (k + 1) / 2
}

// PackSymmetric writes the upper triangle of s row by row, scaling
// off-diagonal entries by √2 so that the Euclidean norm of the result equals
// the Frobenius norm of s.
func PackSymmetric(s mat.Symmetric) []float64 {
	k := s.SymmetricDim()
	out := make([]float64, 0, PackedLen(k))
	for i := 0; i < k; i++ {
		out = append(out, s.At(i, i))
		for j := i + 1; j < k; j++ {
			out = append(out, s.At(i, j)*math.Sqrt2)
		}
	}
	return out
}

// UnpackSymmetric reverses PackSymmetric.
func UnpackSymmetric(packed []float64, k int) (*mat.SymDense, error) {
	if len(packed) != PackedLen(k) {
		return nil, fmt.Errorf("%w: %d packed values for a %d×%d matrix", ErrShapeMismatch, len(packed), k, k)
	}
	s := mat.NewSymDense(k, nil)
	p := 0
	for i := 0; i < k; i++ {
		s.SetSym(i, i, packed[p])
		p++
		for j := i + 1; j < k; j++ {
			s.SetSym(i, j, packed[p]/math.Sqrt2)
			p++
		}
	}
	return s, nil
}
