package testutil

import (
	"bytes"
	"math/rand/v2"
	"strconv"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	r := &RNG{seed: seed}
	r.Reset()
	return r
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewPCG(r.seed, r.seed+1))
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// IntN returns a non-negative pseudo-random number in [0,n).
func (r *RNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// FillGaussian fills dst with values from a standard normal distribution.
func (r *RNG) FillGaussian(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.NormFloat64()
	}
}

// GaussianMatrix returns a rows × cols matrix of standard normal values.
func (r *RNG) GaussianMatrix(rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	r.FillGaussian(data)
	return mat.NewDense(rows, cols, data)
}

// ClusteredMatrix returns rows spread with standard deviation spread around
// k random centres. Row i belongs to centre i % k.
func (r *RNG) ClusteredMatrix(rows, cols, k int, spread float64) *mat.Dense {
	centres := r.GaussianMatrix(k, cols)
	centres.Scale(10, centres)

	m := r.GaussianMatrix(rows, cols)
	m.Scale(spread, m)
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		for j, c := range centres.RawRowView(i % k) {
			row[j] += c
		}
	}
	return m
}

// Words returns n distinct synthetic words.
func Words(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "w" + strconv.Itoa(i)
	}
	return out
}

// VectorFile renders one "word v1 … vd" line per row of m.
func VectorFile(words []string, m mat.Matrix) []byte {
	var buf bytes.Buffer
	_, d := m.Dims()
	for i, w := range words {
		buf.WriteString(w)
		for j := 0; j < d; j++ {
			buf.WriteByte(' ')
			buf.WriteString(strconv.FormatFloat(m.At(i, j), 'g', -1, 64))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// FrequencyFile renders one "word count" line per word.
func FrequencyFile(words []string, counts []int) []byte {
	var buf bytes.Buffer
	for i, w := range words {
		buf.WriteString(w)
		buf.WriteByte(' ')
		buf.WriteString(strconv.Itoa(counts[i]))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
