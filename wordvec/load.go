package wordvec

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/s3e/vocab"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/mat"
)

// SourceStats reports how well one source covered the vocabulary.
type SourceStats struct {
	Name      string
	Dim       int
	Lines     int // data lines read, header excluded
	Malformed int
	Hits      int // distinct vocabulary ids matched
	// Missing holds the ids that were backfilled with the source mean.
	Missing *roaring.Bitmap
}

// Coverage returns the fraction of the vocabulary the source matched.
func (s SourceStats) Coverage() float64 {
	total := s.Hits + int(s.Missing.GetCardinality())
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type options struct {
	logger  *slog.Logger
	workers int
}

// Option configures Load.
type Option func(*options)

// WithLogger sets the logger for progress and malformed-line diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers bounds the number of sources read at once.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Load reads every source and returns the |v| × ΣDim matrix whose row i is
// the concatenated vector of word id i, plus per-source statistics in
// source order.
func Load(ctx context.Context, sources []Source, v *vocab.Vocabulary, optFns ...Option) (*mat.Dense, []SourceStats, error) {
	o := options{
		logger:  slog.New(slog.DiscardHandler),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, fn := range optFns {
		fn(&o)
	}

	if len(sources) == 0 {
		return nil, nil, ErrNoSources
	}
	for _, src := range sources {
		if src.Open == nil || src.Dim < 0 {
			return nil, nil, fmt.Errorf("%w: %q", ErrInvalidSource, src.Name)
		}
	}

	blocks := make([]*mat.Dense, len(sources))
	stats := make([]SourceStats, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	if o.workers > 0 {
		g.SetLimit(o.workers)
	}
	for i, src := range sources {
		g.Go(func() error {
			block, st, err := loadSource(gctx, src, v, o.logger.With("source", src.Name))
			if err != nil {
				return fmt.Errorf("source %q: %w", src.Name, err)
			}
			blocks[i], stats[i] = block, st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	dim := 0
	for _, st := range stats {
		dim += st.Dim
	}
	out := mat.NewDense(v.Len(), dim, nil)
	off := 0
	for i, b := range blocks {
		d := stats[i].Dim
		out.Slice(0, v.Len(), off, off+d).(*mat.Dense).Copy(b)
		off += d
	}

	return out, stats, nil
}

// loadSource fills a |v| × dim block for one source and backfills the rows it
// did not match with the mean of those it did.
func loadSource(ctx context.Context, src Source, v *vocab.Vocabulary, logger *slog.Logger) (*mat.Dense, SourceStats, error) {
	st := SourceStats{Name: src.Name, Dim: src.Dim}

	rc, err := src.Open(ctx)
	if err != nil {
		return nil, st, err
	}
	defer rc.Close()

	n := v.Len()
	var data []float64
	if st.Dim > 0 {
		data = make([]float64, n*st.Dim)
	}
	var scratch []float64
	hits := roaring.New()
	warn := rate.Sometimes{First: 10, Interval: time.Second}
	first := true

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for lineNo := 1; sc.Scan(); lineNo++ {
		if lineNo%16384 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, st, err
			}
		}
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" {
			continue
		}
		word, rest, _ := strings.Cut(line, " ")
		fields := strings.Fields(rest)

		if first {
			first = false
			if isHeader(word, fields) && st.Dim != 1 {
				logger.Debug("skipping vector file header", "header", line)
				continue
			}
		}
		if data == nil {
			st.Dim = len(fields)
			if st.Dim == 0 {
				return nil, st, fmt.Errorf("%w: line %d has no values", ErrInvalidSource, lineNo)
			}
			data = make([]float64, n*st.Dim)
		}
		st.Lines++

		if len(fields) != st.Dim {
			st.Malformed++
			warn.Do(func() {
				logger.Warn("skipping vector line with wrong dimension",
					"line", lineNo, "word", word, "got", len(fields), "want", st.Dim)
			})
			continue
		}

		id, ok := v.ID(word)
		if !ok {
			continue
		}
		if len(scratch) != st.Dim {
			scratch = make([]float64, st.Dim)
		}
		if err := parseRow(fields, scratch); err != nil {
			st.Malformed++
			warn.Do(func() {
				logger.Warn("skipping vector line with bad value", "line", lineNo, "word", word, "error", err)
			})
			continue
		}
		copy(data[id*st.Dim:(id+1)*st.Dim], scratch)
		hits.Add(uint32(id))
	}
	if err := sc.Err(); err != nil {
		return nil, st, fmt.Errorf("read vectors: %w", err)
	}

	st.Hits = int(hits.GetCardinality())
	if st.Hits == 0 {
		st.Missing = roaring.New()
		return nil, st, ErrNoHits
	}

	mean := make([]float64, st.Dim)
	it := hits.Iterator()
	for it.HasNext() {
		id := int(it.Next())
		for j, x := range data[id*st.Dim : (id+1)*st.Dim] {
			mean[j] += x
		}
	}
	for j := range mean {
		mean[j] /= float64(st.Hits)
	}

	st.Missing = roaring.Flip(hits, 0, uint64(n))
	miss := st.Missing.Iterator()
	for miss.HasNext() {
		id := int(miss.Next())
		copy(data[id*st.Dim:(id+1)*st.Dim], mean)
	}

	if st.Malformed > 0 {
		logger.Warn("vector source had malformed lines", "malformed", st.Malformed, "lines", st.Lines)
	}
	logger.Info("vector source loaded", "dim", st.Dim, "hits", st.Hits, "vocabulary", n)

	return mat.NewDense(n, st.Dim, data), st, nil
}

// isHeader reports whether a first line looks like "<count> <dim>".
func isHeader(word string, fields []string) bool {
	if len(fields) != 1 {
		return false
	}
	if _, err := strconv.ParseUint(word, 10, 64); err != nil {
		return false
	}
	_, err := strconv.ParseUint(fields[0], 10, 64)
	return err == nil
}

func parseRow(fields []string, dst []float64) error {
	for j, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return err
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("non-finite value %q", f)
		}
		dst[j] = x
	}
	return nil
}
