// Package weight turns a raw word-frequency table into smoothed inverse
// frequency (SIF) weights: a / (a + p(w)).
//
// Common words end up near zero and rare words near one. Words the table
// does not know are treated as maximally informative and get weight 1.
package weight

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/s3e/vocab"
	"golang.org/x/time/rate"
)

// DefaultSmoothing is the SIF smoothing parameter a.
const DefaultSmoothing = 1e-3

// Stats describes a parsed frequency table.
type Stats struct {
	Lines     int     // non-blank lines read
	Malformed int     // lines skipped
	Total     float64 // sum of all counts
	Matched   int     // vocabulary words found in the table
}

// Table maps every vocabulary id to a weight in (0, 1].
type Table struct {
	weights []float64
	stats   Stats
}

type options struct {
	logger *slog.Logger
}

// Option configures Load.
type Option func(*options)

// WithLogger sets the logger for malformed-line diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Uniform returns a table assigning 1 to every word of v.
func Uniform(v *vocab.Vocabulary) *Table {
	w := make([]float64, v.Len())
	for i := range w {
		w[i] = 1
	}
	return &Table{weights: w}
}

// Load reads "word count" lines from r and computes weights for v.
//
// Blank lines are ignored. Lines without exactly two fields, or whose count
// is not a finite non-negative number, are skipped and logged. If a <= 0 or
// the counts sum to zero, every word gets weight 1.
func Load(ctx context.Context, r io.Reader, v *vocab.Vocabulary, a float64, optFns ...Option) (*Table, error) {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, fn := range optFns {
		fn(&o)
	}

	freq := make(map[string]float64)
	var stats Stats
	warn := rate.Sometimes{First: 10, Interval: time.Second}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lineNo := 1; sc.Scan(); lineNo++ {
		if lineNo%65536 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		stats.Lines++

		fields := strings.Fields(line)
		if len(fields) != 2 {
			stats.Malformed++
			warn.Do(func() {
				o.logger.Warn("skipping malformed frequency line", "line", lineNo, "fields", len(fields))
			})
			continue
		}
		c, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || c < 0 || math.IsInf(c, 0) || math.IsNaN(c) {
			stats.Malformed++
			warn.Do(func() {
				o.logger.Warn("skipping frequency line with bad count", "line", lineNo, "count", fields[1])
			})
			continue
		}
		freq[fields[0]] = c
		stats.Total += c
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read frequency table: %w", err)
	}

	t := &Table{weights: make([]float64, v.Len()), stats: stats}
	for id := range t.weights {
		c, ok := freq[v.Word(id)]
		if ok {
			t.stats.Matched++
		}
		t.weights[id] = sif(a, c, stats.Total, ok)
	}

	if stats.Malformed > 0 {
		o.logger.Warn("frequency table had malformed lines", "malformed", stats.Malformed, "lines", stats.Lines)
	}
	o.logger.Info("word weights computed",
		"matched", t.stats.Matched, "vocabulary", v.Len(), "smoothing", a)

	return t, nil
}

func sif(a, count, total float64, known bool) float64 {
	if !known || a <= 0 || total <= 0 {
		return 1
	}
	return a / (a + count/total)
}

// Len returns the number of ids covered.
func (t *Table) Len() int {
	return len(t.weights)
}

// At returns the weight of id.
func (t *Table) At(id int) float64 {
	return t.weights[id]
}

// Weights returns a copy of the weights indexed by id.
func (t *Table) Weights() []float64 {
	out := make([]float64, len(t.weights))
	copy(out, t.weights)
	return out
}

// Stats returns parse statistics. Zero for Uniform tables.
func (t *Table) Stats() Stats {
	return t.stats
}
