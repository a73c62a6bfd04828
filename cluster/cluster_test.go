package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func grid() *mat.Dense {
	return mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		10, 10,
		10, 11,
		11, 10,
	})
}

func TestFit(t *testing.T) {
	p, err := Fit(context.Background(), grid(), nil, 2, WithSeed(1))
	require.NoError(t, err)

	assert.Equal(t, 2, p.K())
	r, c := p.Centroids.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	require.Len(t, p.Labels, 6)
	for _, l := range p.Labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 2)
	}
	assert.Equal(t, []int{3, 3}, p.Sizes())
	assert.Equal(t, p.Labels[0], p.Nearest([]float64{0.2, 0.2}))
	assert.Equal(t, p.Labels[5], p.Nearest([]float64{12, 12}))
}

func TestFit_SingleCluster(t *testing.T) {
	w := []float64{1, 1, 1, 1, 1, 1}
	p, err := Fit(context.Background(), grid(), w, 1)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, p.Labels)
	assert.InDelta(t, 32.0/6, p.Centroids.At(0, 0), 1e-12)
	assert.InDelta(t, 32.0/6, p.Centroids.At(0, 1), 1e-12)
}

func TestFit_Reproducible(t *testing.T) {
	x := mat.NewDense(40, 3, nil)
	for i := 0; i < 40; i++ {
		for j := 0; j < 3; j++ {
			x.Set(i, j, float64((i*31+j*17)%23))
		}
	}
	a, err := Fit(context.Background(), x, nil, 4, WithSeed(9), WithRestarts(2))
	require.NoError(t, err)
	b, err := Fit(context.Background(), x, nil, 4, WithSeed(9), WithRestarts(2))
	require.NoError(t, err)

	assert.Equal(t, a.Labels, b.Labels)
	assert.True(t, mat.Equal(a.Centroids, b.Centroids))
}

func TestFit_StridedView(t *testing.T) {
	wide := mat.NewDense(6, 4, nil)
	g := grid()
	wide.Slice(0, 6, 1, 3).(*mat.Dense).Copy(g)

	view := wide.Slice(0, 6, 1, 3).(*mat.Dense)
	p, err := Fit(context.Background(), view, nil, 2, WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, p.Sizes())
}

func TestFit_InvalidClusterCount(t *testing.T) {
	_, err := Fit(context.Background(), grid(), nil, 0)
	assert.ErrorIs(t, err, ErrInvalidClusterCount)

	_, err = Fit(context.Background(), grid(), nil, 7)
	assert.ErrorIs(t, err, ErrInvalidClusterCount)
}
