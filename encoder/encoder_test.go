package encoder

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/hupe1980/s3e/cluster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// fixture: 6 words in 2 dimensions, two clusters.
func fixture(t *testing.T) *Encoder {
	t.Helper()
	vectors := mat.NewDense(6, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
		2, 0,
		0, 2,
		3, 1,
	})
	weights := []float64{1, 0.5, 1, 0.25, 1, 1}
	p := &cluster.Partition{
		Labels:    []int{0, 0, 1, 1, 0, 1},
		Centroids: mat.NewDense(2, 2, []float64{0.5, 1, 2, 0.5}),
	}
	enc, err := New(vectors, weights, p)
	require.NoError(t, err)
	return enc
}

func TestEncode_Layout(t *testing.T) {
	enc := fixture(t)
	assert.Equal(t, 2+3, enc.Dim())

	vec, err := enc.Encode([]int{0, 3})
	require.NoError(t, err)
	require.Len(t, vec, enc.Dim())

	// mean of 1·(1,0) and 0.25·(2,0) over two distinct words
	assert.InDeltaSlice(t, []float64{0.75, 0}, vec[:2], 1e-12)

	// word 0 → cluster 0: (1,0)-(0.5,1) = (0.5,-1), centred (0.75,-0.75)
	// word 3 → cluster 1: (0.5,0)-(2,0.5) = (-1.5,-0.5), centred (-0.5,0.5)
	// C = [[1.125, -0.75], [-0.75, 0.5]]
	packed := []float64{1.125, -0.75 * math.Sqrt2, 0.5}
	norm := math.Sqrt(1.125*1.125 + 2*0.75*0.75 + 0.5*0.5)
	for i := range packed {
		packed[i] /= norm
	}
	assert.InDeltaSlice(t, packed, vec[2:], 1e-12)
}

func TestEncode_RepeatsCountOnce(t *testing.T) {
	enc := fixture(t)
	a, err := enc.Encode([]int{2, 4, 2, 2})
	require.NoError(t, err)
	b, err := enc.Encode([]int{2, 4})
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestEncode_Deterministic(t *testing.T) {
	enc := fixture(t)
	a, err := enc.Encode([]int{5, 1, 0})
	require.NoError(t, err)
	b, err := enc.Encode([]int{5, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncode_CovarianceBlockIsUnitOrZero(t *testing.T) {
	enc := fixture(t)
	vec, err := enc.Encode([]int{0, 1, 5})
	require.NoError(t, err)

	var sq float64
	for _, x := range vec[2:] {
		sq += x * x
	}
	assert.InDelta(t, 1, sq, 1e-12)

	empty, err := enc.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, make([]float64, enc.Dim()), empty)
}

func TestEncode_SingleClusterSingleWord(t *testing.T) {
	vectors := mat.NewDense(3, 2, []float64{1, 1, 2, 2, 5, 1})
	p := &cluster.Partition{
		Labels:    []int{0, 0, 0},
		Centroids: mat.NewDense(1, 2, []float64{2, 1}),
	}
	enc, err := New(vectors, []float64{1, 1, 1}, p)
	require.NoError(t, err)

	for id := 0; id < 3; id++ {
		vec, err := enc.Encode([]int{id})
		require.NoError(t, err)
		require.Len(t, vec, 3)
		for _, x := range vec {
			assert.False(t, math.IsNaN(x))
		}
	}

	// (1,1)-(2,1) = (-1,0): centred (-0.5,0.5), C = [0.5], normalised to 1.
	vec, err := enc.Encode([]int{0})
	require.NoError(t, err)
	assert.InDelta(t, 1, vec[2], 1e-12)

	// A residual with equal entries centres to zero and must stay zero.
	flat := mat.NewDense(1, 2, []float64{3, 2})
	enc, err = New(flat, []float64{1}, &cluster.Partition{
		Labels:    []int{0},
		Centroids: mat.NewDense(1, 2, []float64{1, 0}),
	})
	require.NoError(t, err)
	vec, err = enc.Encode([]int{0})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 0}, vec)
}

func TestEncode_UnknownID(t *testing.T) {
	enc := fixture(t)
	_, err := enc.Encode([]int{0, 6})
	assert.ErrorIs(t, err, ErrUnknownID)
	_, err = enc.Encode([]int{-1})
	assert.ErrorIs(t, err, ErrUnknownID)
}

func TestNew_ShapeMismatch(t *testing.T) {
	vectors := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	good := &cluster.Partition{Labels: []int{0, 1}, Centroids: mat.NewDense(2, 2, nil)}

	_, err := New(vectors, []float64{1}, good)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = New(vectors, []float64{1, 1}, &cluster.Partition{Labels: []int{0}, Centroids: mat.NewDense(2, 2, nil)})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = New(vectors, []float64{1, 1}, &cluster.Partition{Labels: []int{0, 1}, Centroids: mat.NewDense(2, 3, nil)})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, err = New(vectors, []float64{1, 1}, &cluster.Partition{Labels: []int{0, 2}, Centroids: mat.NewDense(2, 2, nil)})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestEncodeAll_MatchesSequential(t *testing.T) {
	const (
		n = 50
		d = 4
		k = 3
	)
	rng := rand.New(rand.NewPCG(3, 5))
	vectors := mat.NewDense(n, d, nil)
	weights := make([]float64, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			vectors.Set(i, j, rng.NormFloat64())
		}
		weights[i] = rng.Float64() + 0.01
		labels[i] = i % k
	}
	centroids := mat.NewDense(k, d, nil)
	for j := 0; j < k; j++ {
		for c := 0; c < d; c++ {
			centroids.Set(j, c, rng.NormFloat64())
		}
	}
	enc, err := New(vectors, weights, &cluster.Partition{Labels: labels, Centroids: centroids})
	require.NoError(t, err)

	sentences := make([][]int, 200)
	for i := range sentences {
		s := make([]int, 1+rng.IntN(12))
		for j := range s {
			s[j] = rng.IntN(n)
		}
		sentences[i] = s
	}

	got, err := enc.EncodeAll(context.Background(), sentences, 8)
	require.NoError(t, err)
	r, c := got.Dims()
	assert.Equal(t, len(sentences), r)
	assert.Equal(t, enc.Dim(), c)

	for i, s := range sentences {
		want, err := enc.Encode(s)
		require.NoError(t, err)
		assert.Equal(t, want, mat.Row(nil, i, got), "row %d", i)
	}
}

func TestEncodeAll_Errors(t *testing.T) {
	enc := fixture(t)

	_, err := enc.EncodeAll(context.Background(), [][]int{{0}, {99}}, 2)
	assert.ErrorIs(t, err, ErrUnknownID)

	_, err = enc.EncodeAll(context.Background(), nil, 2)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = enc.EncodeAll(ctx, [][]int{{0}, {1}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
