package kmeans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// ErrInvalidK is returned when k is not in [1, n].
var ErrInvalidK = errors.New("kmeans: k must be between 1 and the number of samples")

// Config controls a training run.
type Config struct {
	K        int
	MaxIter  int     // Lloyd iterations per restart
	Restarts int     // independent seedings; the lowest inertia wins
	Tol      float64 // relative to the mean column variance
	Seed     uint64
}

// DefaultConfig returns the usual settings for k clusters. Train falls back
// to them for a zero MaxIter or Restarts and a negative Tol.
func DefaultConfig(k int) Config {
	return Config{K: k, MaxIter: 300, Restarts: 10, Tol: 1e-4}
}

// Result is the outcome of the best restart.
type Result struct {
	Labels     []int     // n labels in [0, K)
	Centroids  []float64 // K × dim, row-major
	Inertia    float64   // Σ w_i ||x_i - c_label(i)||²
	Iterations int
}

// Train clusters the n × dim row-major matrix data. weights may be nil for
// uniform weights; otherwise it holds n non-negative sample weights.
func Train(ctx context.Context, data []float64, n, dim int, weights []float64, cfg Config, logger *slog.Logger) (*Result, error) {
	if cfg.K <= 0 || cfg.K > n {
		return nil, fmt.Errorf("%w: k=%d n=%d", ErrInvalidK, cfg.K, n)
	}
	if dim <= 0 || len(data) != n*dim {
		return nil, fmt.Errorf("kmeans: data length %d does not match %d×%d", len(data), n, dim)
	}
	if weights != nil && len(weights) != n {
		return nil, fmt.Errorf("kmeans: %d weights for %d samples", len(weights), n)
	}
	def := DefaultConfig(cfg.K)
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = def.MaxIter
	}
	if cfg.Restarts <= 0 {
		cfg.Restarts = def.Restarts
	}
	if cfg.Tol < 0 {
		cfg.Tol = def.Tol
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := newState(data, n, dim, cfg.K, weights)
	tol := cfg.Tol * meanVariance(data, n, dim)
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	var best *Result
	for r := 0; r < cfg.Restarts; r++ {
		res, err := s.run(ctx, rng, cfg.MaxIter, tol)
		if err != nil {
			return nil, err
		}
		logger.Debug("kmeans restart finished",
			"restart", r, "iterations", res.Iterations, "inertia", res.Inertia)
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

// Assign returns the index of the centroid closest to vec.
func Assign(vec, centroids []float64, dim int) int {
	best, bestDist := -1, math.Inf(1)
	for j := 0; j*dim < len(centroids); j++ {
		c := centroids[j*dim : (j+1)*dim]
		var d float64
		for i, x := range vec {
			diff := x - c[i]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

type state struct {
	n, k, dim int
	data      []float64
	weights   []float64
	norms     []float64 // ||x_i||²

	centroids []float64 // k × dim
	cnorms    []float64 // ||c_j||²
	next      []float64 // k × dim accumulator
	mass      []float64 // Σ w per cluster
	dots      []float64 // n × k
	labels    []int
	dist      []float64 // squared distance to the assigned centroid
}

func newState(data []float64, n, dim, k int, weights []float64) *state {
	s := &state{
		n: n, k: k, dim: dim,
		data:      data,
		weights:   weights,
		norms:     make([]float64, n),
		centroids: make([]float64, k*dim),
		cnorms:    make([]float64, k),
		next:      make([]float64, k*dim),
		mass:      make([]float64, k),
		dots:      make([]float64, n*k),
		labels:    make([]int, n),
		dist:      make([]float64, n),
	}
	if s.weights == nil {
		s.weights = make([]float64, n)
		for i := range s.weights {
			s.weights[i] = 1
		}
	}
	for i := 0; i < n; i++ {
		s.norms[i] = dot(s.row(i), s.row(i))
	}
	return s
}

func (s *state) row(i int) []float64 {
	return s.data[i*s.dim : (i+1)*s.dim]
}

func (s *state) centroid(j int) []float64 {
	return s.centroids[j*s.dim : (j+1)*s.dim]
}

func (s *state) run(ctx context.Context, rng *rand.Rand, maxIter int, tol float64) (*Result, error) {
	s.seed(rng)
	for i := range s.labels {
		s.labels[i] = -1
	}

	iter := 0
	for iter < maxIter {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iter++
		if changed := s.assign(); !changed {
			break
		}
		if shift := s.update(); shift <= tol {
			break
		}
	}
	inertia := s.finalAssign()

	return &Result{
		Labels:     append([]int(nil), s.labels...),
		Centroids:  append([]float64(nil), s.centroids...),
		Inertia:    inertia,
		Iterations: iter,
	}, nil
}

// seed picks initial centroids with weighted k-means++: each new centroid is
// drawn with probability proportional to w_i · D(x_i)².
func (s *state) seed(rng *rand.Rand) {
	first := sample(rng, s.weights, nil)
	copy(s.centroid(0), s.row(first))

	minDist := make([]float64, s.n)
	for i := range minDist {
		minDist[i] = math.Inf(1)
	}
	prob := make([]float64, s.n)
	for c := 1; c < s.k; c++ {
		prev := s.centroid(c - 1)
		pn := dot(prev, prev)
		for i := 0; i < s.n; i++ {
			d := max(s.norms[i]+pn-2*dot(s.row(i), prev), 0)
			minDist[i] = min(minDist[i], d)
			prob[i] = s.weights[i] * minDist[i]
		}
		copy(s.centroid(c), s.row(sample(rng, prob, s.weights)))
	}
	s.computeNorms()
}

// sample draws an index with probability proportional to p. If p sums to
// zero it falls back to fallback, then to a uniform draw.
func sample(rng *rand.Rand, p, fallback []float64) int {
	var total float64
	for _, x := range p {
		total += x
	}
	if total <= 0 {
		if fallback != nil {
			return sample(rng, fallback, nil)
		}
		return rng.IntN(len(p))
	}
	target := rng.Float64() * total
	var cum float64
	for i, x := range p {
		cum += x
		if cum > target {
			return i
		}
	}
	return len(p) - 1
}

func (s *state) computeNorms() {
	for j := 0; j < s.k; j++ {
		c := s.centroid(j)
		s.cnorms[j] = dot(c, c)
	}
}

// distances fills dots with X·Cᵀ.
func (s *state) distances() {
	blas64.Gemm(blas.NoTrans, blas.Trans, 1,
		blas64.General{Rows: s.n, Cols: s.dim, Stride: s.dim, Data: s.data},
		blas64.General{Rows: s.k, Cols: s.dim, Stride: s.dim, Data: s.centroids},
		0,
		blas64.General{Rows: s.n, Cols: s.k, Stride: s.k, Data: s.dots},
	)
}

// assign labels every sample with its nearest centroid and reports whether
// any label changed.
func (s *state) assign() bool {
	s.distances()
	changed := false
	for i := 0; i < s.n; i++ {
		best, bestDist := 0, math.Inf(1)
		row := s.dots[i*s.k : (i+1)*s.k]
		for j, xc := range row {
			d := max(s.norms[i]+s.cnorms[j]-2*xc, 0)
			if d < bestDist {
				best, bestDist = j, d
			}
		}
		if s.labels[i] != best {
			s.labels[i] = best
			changed = true
		}
		s.dist[i] = bestDist
	}
	return changed
}

func (s *state) finalAssign() float64 {
	s.assign()
	var inertia float64
	for i, d := range s.dist {
		inertia += s.weights[i] * d
	}
	return inertia
}

// update moves every centroid to the weighted mean of its members and
// returns the total squared shift.
func (s *state) update() float64 {
	clear(s.next)
	clear(s.mass)
	for i := 0; i < s.n; i++ {
		j := s.labels[i]
		w := s.weights[i]
		if w == 0 {
			continue
		}
		s.mass[j] += w
		blas64.Axpy(w,
			blas64.Vector{N: s.dim, Inc: 1, Data: s.row(i)},
			blas64.Vector{N: s.dim, Inc: 1, Data: s.next[j*s.dim : (j+1)*s.dim]},
		)
	}

	var taken map[int]bool
	for j := 0; j < s.k; j++ {
		dst := s.next[j*s.dim : (j+1)*s.dim]
		if s.mass[j] > 0 {
			blas64.Scal(1/s.mass[j], blas64.Vector{N: s.dim, Inc: 1, Data: dst})
			continue
		}
		// Empty cluster: move it onto the sample that contributes most to
		// the inertia.
		if taken == nil {
			taken = make(map[int]bool)
		}
		far, farDist := -1, -1.0
		for i := 0; i < s.n; i++ {
			if taken[i] {
				continue
			}
			if d := s.weights[i] * s.dist[i]; d > farDist {
				far, farDist = i, d
			}
		}
		taken[far] = true
		copy(dst, s.row(far))
	}

	var shift float64
	for i, x := range s.next {
		d := x - s.centroids[i]
		shift += d * d
	}
	s.centroids, s.next = s.next, s.centroids
	s.computeNorms()
	return shift
}

func dot(a, b []float64) float64 {
	return blas64.Dot(
		blas64.Vector{N: len(a), Inc: 1, Data: a},
		blas64.Vector{N: len(b), Inc: 1, Data: b},
	)
}

// meanVariance returns the mean of the per-column variances of data.
func meanVariance(data []float64, n, dim int) float64 {
	var total float64
	for j := 0; j < dim; j++ {
		var mean, m2 float64
		for i := 0; i < n; i++ {
			x := data[i*dim+j]
			delta := x - mean
			mean += delta / float64(i+1)
			m2 += delta * (x - mean)
		}
		total += m2 / float64(n)
	}
	return total / float64(dim)
}
