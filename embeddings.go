package s3e

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/s3e/blobstore"
	"github.com/hupe1980/s3e/metric"
	"gonum.org/v1/gonum/mat"
)

// Embeddings is an S × E matrix of sentence embeddings. Row i belongs to
// input sentence i.
type Embeddings struct {
	m       *mat.Dense
	removed int
}

// NewEmbeddings wraps an existing matrix. The matrix is not copied.
func NewEmbeddings(m *mat.Dense) *Embeddings {
	return &Embeddings{m: m}
}

// Len returns the number of sentences.
func (e *Embeddings) Len() int {
	r, _ := e.m.Dims()
	return r
}

// Dim returns the embedding length.
func (e *Embeddings) Dim() int {
	_, c := e.m.Dims()
	return c
}

// Removed returns the number of dominant directions removed after encoding.
func (e *Embeddings) Removed() int {
	return e.removed
}

// Row returns a copy of the embedding of sentence i.
func (e *Embeddings) Row(i int) ([]float64, error) {
	if i < 0 || i >= e.Len() {
		return nil, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, i, e.Len())
	}
	return mat.Row(nil, i, e.m), nil
}

// Matrix returns a copy of the embedding matrix.
func (e *Embeddings) Matrix() *mat.Dense {
	return mat.DenseCopyOf(e.m)
}

// Cosine returns the cosine similarity of sentences i and j. A zero row has
// similarity 0 with everything.
func (e *Embeddings) Cosine(i, j int) (float64, error) {
	a, err := e.Row(i)
	if err != nil {
		return 0, err
	}
	b, err := e.Row(j)
	if err != nil {
		return 0, err
	}
	return metric.CosineSimilarity(a, b)
}

// WriteTo writes one row per line, values separated by single spaces.
func (e *Embeddings) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	buf := make([]byte, 0, 32)
	for i := 0; i < e.Len(); i++ {
		for j, x := range e.m.RawRowView(i) {
			if j > 0 {
				buf = append(buf[:0], ' ')
			} else {
				buf = buf[:0]
			}
			buf = strconv.AppendFloat(buf, x, 'g', -1, 64)
			n, err := bw.Write(buf)
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return written, err
		}
		written++
	}
	return written, bw.Flush()
}

// ReadEmbeddings parses the format written by WriteTo.
func ReadEmbeddings(r io.Reader) (*Embeddings, error) {
	var (
		data []float64
		rows int
		cols = -1
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for lineNo := 1; sc.Scan(); lineNo++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if cols < 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, &ErrDimensionMismatch{
				Expected: cols,
				Actual:   len(fields),
				cause:    fmt.Errorf("line %d", lineNo),
			}
		}
		for _, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			data = append(data, x)
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read embeddings: %w", err)
	}
	if rows == 0 {
		return nil, ErrEmptyCorpus
	}
	return &Embeddings{m: mat.NewDense(rows, cols, data)}, nil
}

// Save writes the embeddings to the named blob, compressed according to its
// extension.
func (e *Embeddings) Save(ctx context.Context, store blobstore.BlobStore, name string) error {
	w, err := blobstore.CreateText(ctx, store, name)
	if err != nil {
		return err
	}
	if _, err := e.WriteTo(w); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return w.Close()
}

// LoadEmbeddings reads embeddings saved with Save.
func LoadEmbeddings(ctx context.Context, store blobstore.BlobStore, name string) (*Embeddings, error) {
	rc, err := blobstore.OpenText(ctx, store, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadEmbeddings(rc)
}
