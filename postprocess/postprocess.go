// Package postprocess removes the dominant directions shared by a whole
// corpus of sentence embeddings.
//
// The directions are the top right singular vectors of the uncentred
// embedding matrix. Removing them strips the component every sentence has in
// common, which otherwise dominates cosine similarity.
package postprocess

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidComponents is returned when the number of directions to remove
// is negative or not smaller than the number of rows.
var ErrInvalidComponents = errors.New("postprocess: invalid number of components")

// DefaultComponents is the number of directions removed by default.
const DefaultComponents = 1

// Remover projects rows onto the orthogonal complement of a fixed set of
// unit directions.
type Remover struct {
	// components is p × E with orthonormal rows.
	components *mat.Dense
	dim        int
}

// Fit learns the top p right singular vectors of x. p == 0 yields a
// Remover that leaves rows unchanged.
func Fit(x mat.Matrix, p int) (*Remover, error) {
	s, e := x.Dims()
	if p < 0 || (p > 0 && (p >= s || p > e)) {
		return nil, fmt.Errorf("%w: %d components for a %d×%d matrix", ErrInvalidComponents, p, s, e)
	}
	if p == 0 {
		return &Remover{dim: e}, nil
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThinV); !ok {
		return nil, errors.New("postprocess: SVD factorization failed")
	}
	var v mat.Dense
	svd.VTo(&v)

	comps := mat.NewDense(p, e, nil)
	comps.Copy(v.Slice(0, e, 0, p).T())
	return &Remover{components: comps, dim: e}, nil
}

// Components returns the number of directions removed.
func (r *Remover) Components() int {
	if r.components == nil {
		return 0
	}
	p, _ := r.components.Dims()
	return p
}

// Directions returns a copy of the p × E direction matrix, or nil for p == 0.
func (r *Remover) Directions() *mat.Dense {
	if r.components == nil {
		return nil
	}
	return mat.DenseCopyOf(r.components)
}

// Apply returns x − (x·Uᵀ)·U where U holds the learned directions.
func (r *Remover) Apply(x mat.Matrix) (*mat.Dense, error) {
	_, e := x.Dims()
	if e != r.dim {
		return nil, fmt.Errorf("postprocess: rows have %d columns, fitted on %d", e, r.dim)
	}
	out := mat.DenseCopyOf(x)
	if r.components == nil {
		return out, nil
	}
	var proj mat.Dense
	proj.Mul(x, r.components.T())
	var back mat.Dense
	back.Mul(&proj, r.components)
	out.Sub(out, &back)
	return out, nil
}

// FitApply fits on x and returns the cleaned matrix together with the
// Remover.
func FitApply(x mat.Matrix, p int) (*mat.Dense, *Remover, error) {
	r, err := Fit(x, p)
	if err != nil {
		return nil, nil, err
	}
	out, err := r.Apply(x)
	if err != nil {
		return nil, nil, err
	}
	return out, r, nil
}
