package wordvec

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// skewed returns n×d data with one direction far stronger than the others.
func skewed(n, d int) *mat.Dense {
	rng := rand.New(rand.NewPCG(7, 11))
	x := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		common := rng.NormFloat64() * 20
		for j := 0; j < d; j++ {
			x.Set(i, j, 3+common+rng.NormFloat64()*float64(j+1)/float64(d))
		}
	}
	return x
}

func TestSuppress_ZeroIsCopy(t *testing.T) {
	x := skewed(20, 4)
	out, err := Suppress(x, 0)
	require.NoError(t, err)
	assert.True(t, mat.Equal(x, out))

	out.Set(0, 0, -1)
	assert.NotEqual(t, -1.0, x.At(0, 0))
}

func TestSuppress_ShrinksDominantDirections(t *testing.T) {
	const m = 2
	x := skewed(60, 5)
	n, d := x.Dims()

	out, err := Suppress(x, m)
	require.NoError(t, err)

	// Columns end up centred.
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, out)
		assert.InDelta(t, 0, stat.Mean(col, nil), 1e-9)
	}

	var centred mat.Dense
	centred.CloneFrom(x)
	center(&centred)

	var pc stat.PC
	require.True(t, pc.PrincipalComponents(&centred, nil))
	vars := pc.VarsTo(nil)
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	for j := 0; j < m; j++ {
		u := vecs.ColView(j)
		var before, after mat.VecDense
		before.MulVec(&centred, u)
		after.MulVec(out, u)
		before.ScaleVec(vars[m]/vars[j], &before)
		assert.True(t, floats.EqualApprox(before.RawVector().Data, after.RawVector().Data, 1e-6),
			"component %d", j)
	}

	// Directions past the suppressed ones are untouched.
	u := vecs.ColView(m)
	var before, after mat.VecDense
	before.MulVec(&centred, u)
	after.MulVec(out, u)
	assert.True(t, floats.EqualApprox(before.RawVector().Data, after.RawVector().Data, 1e-6))
}

func TestSuppress_RankDeficient(t *testing.T) {
	x := skewed(20, 3)

	_, err := Suppress(x, 3)
	assert.ErrorIs(t, err, ErrRankDeficient)

	_, err = Suppress(x, DefaultDominantComponents)
	assert.ErrorIs(t, err, ErrRankDeficient)

	_, err = Suppress(x, -1)
	assert.ErrorIs(t, err, ErrRankDeficient)

	// Identical rows have no variance at all.
	flat := mat.NewDense(5, 3, []float64{
		1, 2, 3,
		1, 2, 3,
		1, 2, 3,
		1, 2, 3,
		1, 2, 3,
	})
	_, err = Suppress(flat, 1)
	assert.ErrorIs(t, err, ErrRankDeficient)
}

func TestSuppress_DoesNotModifyInput(t *testing.T) {
	x := skewed(30, 4)
	var orig mat.Dense
	orig.CloneFrom(x)

	_, err := Suppress(x, 1)
	require.NoError(t, err)
	assert.True(t, mat.Equal(&orig, x))
}
