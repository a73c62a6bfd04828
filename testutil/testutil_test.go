package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(4711)
	a := make([]float64, 16)
	rng.FillGaussian(a)

	rng.Reset()
	b := make([]float64, 16)
	rng.FillGaussian(b)

	assert.Equal(t, a, b)
	assert.Equal(t, uint64(4711), rng.Seed())
}

func TestFillUniform(t *testing.T) {
	rng := NewRNG(1)
	v := make([]float64, 64)
	rng.FillUniform(v)
	for _, x := range v {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.Less(t, x, 1.0)
	}
}

func TestClusteredMatrix(t *testing.T) {
	rng := NewRNG(4711)
	m := rng.ClusteredMatrix(30, 4, 3, 0.01)

	r, c := m.Dims()
	assert.Equal(t, 30, r)
	assert.Equal(t, 4, c)

	// Rows of the same centre are close, rows of different centres are not.
	var same, diff mat.VecDense
	same.SubVec(m.RowView(0), m.RowView(3))
	diff.SubVec(m.RowView(0), m.RowView(1))
	assert.Less(t, mat.Norm(&same, 2), 0.5)
	assert.Greater(t, mat.Norm(&diff, 2), mat.Norm(&same, 2))
}

func TestVectorFile(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 0.5, -2, 3})
	got := string(VectorFile([]string{"good", "bad"}, m))
	assert.Equal(t, "good 1 0.5\nbad -2 3\n", got)

	freq := string(FrequencyFile(Words(2), []int{10, 3}))
	assert.Equal(t, 2, strings.Count(freq, "\n"))
	assert.True(t, strings.HasPrefix(freq, "w0 10\n"))
}
