// Package cluster partitions the vocabulary into semantic groups with
// weighted k-means over the word vector matrix.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/s3e/internal/kmeans"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidClusterCount is returned when k is not in [1, number of words].
var ErrInvalidClusterCount = errors.New("cluster: cluster count must be between 1 and the vocabulary size")

// DefaultClusters is the number of semantic groups used by default.
const DefaultClusters = 10

// Partition is the result of one clustering run.
type Partition struct {
	Labels     []int      // one label in [0, K) per row
	Centroids  *mat.Dense // K × D
	Inertia    float64
	Iterations int
}

// K returns the number of clusters.
func (p *Partition) K() int {
	r, _ := p.Centroids.Dims()
	return r
}

// Sizes returns how many rows carry each label.
func (p *Partition) Sizes() []int {
	sizes := make([]int, p.K())
	for _, l := range p.Labels {
		sizes[l]++
	}
	return sizes
}

// Nearest returns the cluster whose centroid is closest to vec.
func (p *Partition) Nearest(vec []float64) int {
	_, d := p.Centroids.Dims()
	return kmeans.Assign(vec, p.Centroids.RawMatrix().Data, d)
}

type options struct {
	seed     uint64
	maxIter  int
	restarts int
	tol      float64
	logger   *slog.Logger
}

// Option configures Fit.
type Option func(*options)

// WithSeed makes the run reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithMaxIter bounds the Lloyd iterations per restart.
func WithMaxIter(n int) Option {
	return func(o *options) {
		o.maxIter = n
	}
}

// WithRestarts sets the number of independent seedings.
func WithRestarts(n int) Option {
	return func(o *options) {
		o.restarts = n
	}
}

// WithTolerance sets the convergence threshold relative to the mean column
// variance.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tol = tol
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Fit clusters the rows of vectors into k groups. weights holds one sample
// weight per row; nil means uniform.
func Fit(ctx context.Context, vectors *mat.Dense, weights []float64, k int, optFns ...Option) (*Partition, error) {
	def := kmeans.DefaultConfig(k)
	o := options{
		maxIter:  def.MaxIter,
		restarts: def.Restarts,
		tol:      def.Tol,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, fn := range optFns {
		fn(&o)
	}

	n, d := vectors.Dims()
	if k <= 0 || k > n {
		return nil, fmt.Errorf("%w: k=%d, %d words", ErrInvalidClusterCount, k, n)
	}

	// Train needs a contiguous row-major buffer.
	raw := vectors.RawMatrix()
	data := raw.Data
	if raw.Stride != d {
		var c mat.Dense
		c.CloneFrom(vectors)
		data = c.RawMatrix().Data
	}

	res, err := kmeans.Train(ctx, data, n, d, weights, kmeans.Config{
		K:        k,
		MaxIter:  o.maxIter,
		Restarts: o.restarts,
		Tol:      o.tol,
		Seed:     o.seed,
	}, o.logger)
	if err != nil {
		if errors.Is(err, kmeans.ErrInvalidK) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidClusterCount, err)
		}
		return nil, err
	}

	o.logger.Info("vocabulary clustered",
		"clusters", k, "words", n, "iterations", res.Iterations, "inertia", res.Inertia)

	return &Partition{
		Labels:     res.Labels,
		Centroids:  mat.NewDense(k, d, res.Centroids),
		Inertia:    res.Inertia,
		Iterations: res.Iterations,
	}, nil
}
