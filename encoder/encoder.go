package encoder

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/hupe1980/s3e/cluster"
	"github.com/viterin/vek"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrShapeMismatch is returned when vectors, weights and partition do not
	// describe the same vocabulary and dimensionality.
	ErrShapeMismatch = errors.New("encoder: shape mismatch")
	// ErrUnknownID is returned for a word id outside the vocabulary.
	ErrUnknownID = errors.New("encoder: word id out of range")
)

// Encoder holds the read-only artifacts shared by every sentence. It is safe
// for concurrent use.
type Encoder struct {
	vectors   *mat.Dense // N × D
	weights   []float64
	labels    []int
	centroids *mat.Dense // K × D
	n, d, k   int
}

// New checks that the inputs agree and returns an Encoder over them. The
// inputs are referenced, not copied, and must not change afterwards.
func New(vectors *mat.Dense, weights []float64, p *cluster.Partition) (*Encoder, error) {
	n, d := vectors.Dims()
	if len(weights) != n {
		return nil, fmt.Errorf("%w: %d weights for %d words", ErrShapeMismatch, len(weights), n)
	}
	if len(p.Labels) != n {
		return nil, fmt.Errorf("%w: %d labels for %d words", ErrShapeMismatch, len(p.Labels), n)
	}
	k, cd := p.Centroids.Dims()
	if cd != d {
		return nil, fmt.Errorf("%w: centroids have %d columns, vectors %d", ErrShapeMismatch, cd, d)
	}
	for i, l := range p.Labels {
		if l < 0 || l >= k {
			return nil, fmt.Errorf("%w: word %d has label %d with %d clusters", ErrShapeMismatch, i, l, k)
		}
	}
	return &Encoder{
		vectors:   vectors,
		weights:   weights,
		labels:    p.Labels,
		centroids: p.Centroids,
		n:         n,
		d:         d,
		k:         k,
	}, nil
}

// Dim returns the length of an encoded sentence: D + K(K+1)/2.
func (e *Encoder) Dim() int {
	return e.d + PackedLen(e.k)
}

// Encode returns the embedding of one sentence. Repeated ids count once.
// An empty sentence encodes to the zero vector.
func (e *Encoder) Encode(ids []int) ([]float64, error) {
	uniq, err := e.distinct(ids)
	if err != nil {
		return nil, err
	}
	weighted := e.weighted(uniq)

	out := make([]float64, 0, e.Dim())
	out = append(out, meanPool(weighted, e.d)...)
	out = append(out, normalize(PackSymmetric(covariance(e.residuals(uniq, weighted))))...)
	return out, nil
}

// EncodeAll encodes every sentence into the rows of a len(sentences) × Dim
// matrix, using up to workers goroutines (GOMAXPROCS when workers <= 0).
// Row i depends only on sentences[i], so the result does not depend on
// scheduling.
func (e *Encoder) EncodeAll(ctx context.Context, sentences [][]int, workers int) (*mat.Dense, error) {
	if len(sentences) == 0 {
		return nil, fmt.Errorf("%w: no sentences", ErrShapeMismatch)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := mat.NewDense(len(sentences), e.Dim(), nil)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ids := range sentences {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vec, err := e.Encode(ids)
			if err != nil {
				return fmt.Errorf("sentence %d: %w", i, err)
			}
			out.SetRow(i, vec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// distinct returns ids without repeats, in first-seen order.
func (e *Encoder) distinct(ids []int) ([]int, error) {
	seen := make(map[int]struct{}, len(ids))
	uniq := make([]int, 0, len(ids))
	for _, id := range ids {
		if id < 0 || id >= e.n {
			return nil, fmt.Errorf("%w: %d", ErrUnknownID, id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	return uniq, nil
}

// weighted returns weight(w)·vec(w) for every id.
func (e *Encoder) weighted(ids []int) [][]float64 {
	out := make([][]float64, len(ids))
	for i, id := range ids {
		out[i] = vek.MulNumber(e.vectors.RawRowView(id), e.weights[id])
	}
	return out
}

// meanPool sums the weighted vectors and divides by their count.
func meanPool(weighted [][]float64, d int) []float64 {
	sum := make([]float64, d)
	if len(weighted) == 0 {
		return sum
	}
	for _, v := range weighted {
		vek.Add_Inplace(sum, v)
	}
	vek.MulNumber_Inplace(sum, 1/float64(len(weighted)))
	return sum
}

// residuals accumulates weight(w)·vec(w) − centroid(label(w)) into the row
// of w's cluster. Clusters no word falls into stay zero.
func (e *Encoder) residuals(ids []int, weighted [][]float64) *mat.Dense {
	m := mat.NewDense(e.k, e.d, nil)
	for i, id := range ids {
		row := m.RawRowView(e.labels[id])
		vek.Add_Inplace(row, weighted[i])
		vek.Sub_Inplace(row, e.centroids.RawRowView(e.labels[id]))
	}
	return m
}

// covariance centres each row of m on its own mean and returns m·mᵀ.
func covariance(m *mat.Dense) *mat.SymDense {
	k, _ := m.Dims()
	for i := 0; i < k; i++ {
		row := m.RawRowView(i)
		vek.SubNumber_Inplace(row, vek.Mean(row))
	}
	var c mat.SymDense
	c.SymOuterK(1, m)
	return &c
}

// normalize scales v to unit length in place. A zero vector stays zero.
func normalize(v []float64) []float64 {
	if norm := vek.Norm(v); norm > 0 {
		vek.MulNumber_Inplace(v, 1/norm)
	}
	return v
}
