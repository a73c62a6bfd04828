package wordvec

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultDominantComponents is the number of principal directions Suppress
// shrinks by default.
const DefaultDominantComponents = 10

// Suppress returns a post-processed copy of x.
//
// The columns are mean-centred, then for each of the top m principal
// components u_j the row projection onto u_j is scaled down by
// (λ_j − λ_m) / λ_j, where λ_m is the variance of the first component kept
// as is. m == 0 returns an unmodified copy.
func Suppress(x *mat.Dense, m int) (*mat.Dense, error) {
	if m < 0 {
		return nil, fmt.Errorf("%w: negative component count %d", ErrRankDeficient, m)
	}
	var out mat.Dense
	out.CloneFrom(x)
	if m == 0 {
		return &out, nil
	}

	n, d := x.Dims()
	if min(n, d) <= m {
		return nil, fmt.Errorf("%w: %d×%d matrix has fewer than %d components", ErrRankDeficient, n, d, m+1)
	}

	center(&out)

	var pc stat.PC
	if ok := pc.PrincipalComponents(&out, nil); !ok {
		return nil, fmt.Errorf("%w: principal component analysis did not converge", ErrRankDeficient)
	}
	vars := pc.VarsTo(nil)
	if len(vars) <= m {
		return nil, fmt.Errorf("%w: only %d components", ErrRankDeficient, len(vars))
	}

	scale := make([]float64, m)
	for j := range scale {
		if vars[j] <= 0 {
			return nil, fmt.Errorf("%w: component %d has zero variance", ErrRankDeficient, j)
		}
		scale[j] = (vars[j] - vars[m]) / vars[j]
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	top := vecs.Slice(0, d, 0, m)

	// out -= ((out·U) diag(scale)) Uᵀ
	var proj mat.Dense
	proj.Mul(&out, top)
	for j, s := range scale {
		col := proj.ColView(j).(*mat.VecDense)
		col.ScaleVec(s, col)
	}
	var shrink mat.Dense
	shrink.Mul(&proj, top.T())
	out.Sub(&out, &shrink)

	return &out, nil
}

// center subtracts the column means of x in place.
func center(x *mat.Dense) {
	n, d := x.Dims()
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		mu := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			x.Set(i, j, x.At(i, j)-mu)
		}
	}
}
