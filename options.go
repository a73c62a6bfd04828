package s3e

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/hupe1980/s3e/cluster"
	"github.com/hupe1980/s3e/codec"
	"github.com/hupe1980/s3e/postprocess"
	"github.com/hupe1980/s3e/weight"
	"github.com/hupe1980/s3e/wordvec"
)

// DefaultPlaceholder stands in for sentences with no known word.
const DefaultPlaceholder = "."

type options struct {
	clusters           int
	postProcessing     int
	smoothing          float64
	seed               uint64
	restarts           int
	maxIter            int
	dominantComponents int
	minCount           int
	placeholder        string
	workers            int
	codec              codec.Codec
	metricsCollector   MetricsCollector
	logger             *Logger
}

// Option configures Build and Embed.
type Option func(*options)

// WithClusters sets the number of semantic groups K. Default 10.
func WithClusters(k int) Option {
	return func(o *options) {
		o.clusters = k
	}
}

// WithPostProcessing sets how many dominant directions are removed from the
// finished embeddings. 0 disables the step. Default 1.
func WithPostProcessing(p int) Option {
	return func(o *options) {
		o.postProcessing = p
	}
}

// WithSmoothing sets the SIF parameter a. a <= 0 weighs every word equally.
// Default 1e-3.
func WithSmoothing(a float64) Option {
	return func(o *options) {
		o.smoothing = a
	}
}

// WithSeed seeds the clustering so that runs are reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithRestarts sets the number of k-means restarts. Default 10.
func WithRestarts(n int) Option {
	return func(o *options) {
		o.restarts = n
	}
}

// WithMaxIter bounds the k-means iterations per restart. Default 300.
func WithMaxIter(n int) Option {
	return func(o *options) {
		o.maxIter = n
	}
}

// WithDominantComponents sets how many principal directions of the word
// vectors are shrunk after loading. 0 disables the correction. Default 10,
// which needs more than 10 vector dimensions.
func WithDominantComponents(m int) Option {
	return func(o *options) {
		o.dominantComponents = m
	}
}

// WithMinCount drops corpus words seen fewer than n times from the
// vocabulary.
func WithMinCount(n int) Option {
	return func(o *options) {
		o.minCount = n
	}
}

// WithPlaceholder sets the token substituted for empty sentences. If the
// token is not in the vocabulary the padding sentinel is used instead.
func WithPlaceholder(token string) Option {
	return func(o *options) {
		o.placeholder = token
	}
}

// WithWorkers bounds the goroutines used for loading and encoding.
// Default GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithCodec configures the codec used for the run manifest.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for the pipeline
// stages. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &s3e.BasicMetricsCollector{}
//	emb, _, _ := s3e.Embed(ctx, sentences, sources, freq, s3e.WithMetricsCollector(metrics))
//	stats := metrics.GetStats()
//	fmt.Printf("Stages: %d, coverage: %.2f\n", stats.StageCount, stats.Coverage)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := s3e.NewJSONLogger(slog.LevelInfo)
//	model, _ := s3e.Build(ctx, sentences, sources, freq, s3e.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		clusters:           cluster.DefaultClusters,
		postProcessing:     postprocess.DefaultComponents,
		smoothing:          weight.DefaultSmoothing,
		restarts:           10,
		maxIter:            300,
		dominantComponents: wordvec.DefaultDominantComponents,
		placeholder:        DefaultPlaceholder,
		workers:            runtime.GOMAXPROCS(0),
		codec:              codec.Default,
		metricsCollector:   NoopMetricsCollector{},
		logger:             NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// validate rejects settings that are wrong regardless of the data.
func (o options) validate() error {
	if o.clusters <= 0 {
		return fmt.Errorf("%w: %d clusters", ErrInvalidClusterCount, o.clusters)
	}
	if o.postProcessing < 0 {
		return fmt.Errorf("%w: %d components", ErrInvalidComponents, o.postProcessing)
	}
	if o.dominantComponents < 0 {
		return fmt.Errorf("%w: %d dominant components", ErrInvalidOption, o.dominantComponents)
	}
	if o.restarts <= 0 || o.maxIter <= 0 {
		return fmt.Errorf("%w: restarts=%d max iterations=%d", ErrInvalidOption, o.restarts, o.maxIter)
	}
	if o.workers <= 0 {
		return fmt.Errorf("%w: %d workers", ErrInvalidOption, o.workers)
	}
	return nil
}
