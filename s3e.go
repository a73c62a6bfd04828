package s3e

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/s3e/cluster"
	"github.com/hupe1980/s3e/encoder"
	"github.com/hupe1980/s3e/postprocess"
	"github.com/hupe1980/s3e/vocab"
	"github.com/hupe1980/s3e/weight"
	"github.com/hupe1980/s3e/wordvec"
	"gonum.org/v1/gonum/mat"
)

// Stage names a step of the pipeline in logs and metrics.
type Stage string

// Pipeline stages, in execution order.
const (
	StageVocabulary  Stage = "vocabulary"
	StageVectors     Stage = "vectors"
	StageSuppress    Stage = "suppress"
	StageWeights     Stage = "weights"
	StageCluster     Stage = "cluster"
	StageEncode      Stage = "encode"
	StagePostprocess Stage = "postprocess"
)

// Model holds everything derived from the corpus vocabulary: word vectors,
// word weights and the semantic partition. It is read-only after Build and
// safe for concurrent use.
type Model struct {
	vocab       *vocab.Vocabulary
	vectors     *mat.Dense
	weights     *weight.Table
	partition   *cluster.Partition
	encoder     *encoder.Encoder
	sources     []wordvec.SourceStats
	placeholder int
	opts        options
}

// Build constructs the vocabulary of sentences, loads and corrects the word
// vectors from sources, weights the words from the frequency table freq
// (nil means uniform weights) and clusters the vocabulary.
func Build(ctx context.Context, sentences [][]string, sources []wordvec.Source, freq io.Reader, optFns ...Option) (*Model, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}
	if len(sentences) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	m := &Model{opts: o}
	p := &pipeline{ctx: ctx, opts: o}

	if err := p.run(StageVocabulary, func() error {
		m.vocab = vocab.Build(sentences, vocab.WithMinCount(o.minCount))
		if o.clusters > m.vocab.Len() {
			return fmt.Errorf("%w: %d clusters for %d words", ErrInvalidClusterCount, o.clusters, m.vocab.Len())
		}
		m.placeholder = m.resolvePlaceholder()
		return nil
	}); err != nil {
		return nil, err
	}

	if err := p.run(StageVectors, func() error {
		var err error
		m.vectors, m.sources, err = wordvec.Load(ctx, sources, m.vocab,
			wordvec.WithLogger(o.logger.WithStage(StageVectors).Logger),
			wordvec.WithWorkers(o.workers),
		)
		if err != nil {
			return err
		}
		for _, st := range m.sources {
			o.logger.LogSource(ctx, st.Name, st.Hits, m.vocab.Len())
			o.metricsCollector.RecordSource(st.Name, st.Hits, m.vocab.Len())
			if st.Malformed > 0 {
				o.metricsCollector.RecordMalformed("vectors", st.Malformed)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if o.dominantComponents > 0 {
		if err := p.run(StageSuppress, func() error {
			var err error
			m.vectors, err = wordvec.Suppress(m.vectors, o.dominantComponents)
			return err
		}); err != nil {
			return nil, err
		}
	}

	if err := p.run(StageWeights, func() error {
		if freq == nil {
			m.weights = weight.Uniform(m.vocab)
			return nil
		}
		var err error
		m.weights, err = weight.Load(ctx, freq, m.vocab, o.smoothing,
			weight.WithLogger(o.logger.WithStage(StageWeights).Logger))
		if err != nil {
			return err
		}
		if n := m.weights.Stats().Malformed; n > 0 {
			o.metricsCollector.RecordMalformed("weights", n)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if err := p.run(StageCluster, func() error {
		var err error
		m.partition, err = cluster.Fit(ctx, m.vectors, m.weights.Weights(), o.clusters,
			cluster.WithSeed(o.seed),
			cluster.WithRestarts(o.restarts),
			cluster.WithMaxIter(o.maxIter),
			cluster.WithLogger(o.logger.WithStage(StageCluster).Logger),
		)
		if err != nil {
			return err
		}
		m.encoder, err = encoder.New(m.vectors, m.weights.Weights(), m.partition)
		return err
	}); err != nil {
		return nil, err
	}

	return m, nil
}

// Embed encodes sentences with the model and removes the configured number
// of dominant directions from the result. Row i of the returned embeddings
// belongs to sentences[i].
//
// Tokens outside the vocabulary are dropped. A sentence left without tokens
// is replaced by the placeholder.
func (m *Model) Embed(ctx context.Context, sentences [][]string) (*Embeddings, error) {
	if len(sentences) == 0 {
		return nil, ErrEmptyCorpus
	}
	o := m.opts
	if pp := o.postProcessing; pp > 0 && (pp >= len(sentences) || pp > m.encoder.Dim()) {
		return nil, fmt.Errorf("%w: %d components for %d sentences of dimension %d",
			ErrInvalidComponents, pp, len(sentences), m.encoder.Dim())
	}
	p := &pipeline{ctx: ctx, opts: o}

	var raw *mat.Dense
	if err := p.run(StageEncode, func() error {
		ids, substituted := m.lookup(sentences)
		if substituted > 0 {
			o.logger.InfoContext(ctx, "empty sentences replaced by placeholder",
				"count", substituted, "placeholder", m.vocab.Word(m.placeholder))
		}
		var err error
		raw, err = m.encoder.EncodeAll(ctx, ids, o.workers)
		return err
	}); err != nil {
		return nil, err
	}

	var out *Embeddings
	if err := p.run(StagePostprocess, func() error {
		x, remover, err := postprocess.FitApply(raw, o.postProcessing)
		if err != nil {
			return err
		}
		out = &Embeddings{m: x, removed: remover.Components()}
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// Embed builds a model from sentences and embeds the same sentences.
func Embed(ctx context.Context, sentences [][]string, sources []wordvec.Source, freq io.Reader, optFns ...Option) (*Embeddings, *Model, error) {
	m, err := Build(ctx, sentences, sources, freq, optFns...)
	if err != nil {
		return nil, nil, err
	}
	e, err := m.Embed(ctx, sentences)
	if err != nil {
		return nil, nil, err
	}
	return e, m, nil
}

// lookup maps every sentence to word ids, substituting the placeholder for
// sentences without known words.
func (m *Model) lookup(sentences [][]string) ([][]int, int) {
	ids := make([][]int, len(sentences))
	substituted := 0
	for i, s := range sentences {
		known, _ := m.vocab.Lookup(s)
		if len(known) == 0 {
			known = []int{m.placeholder}
			substituted++
		}
		ids[i] = known
	}
	return ids, substituted
}

func (m *Model) resolvePlaceholder() int {
	if id, ok := m.vocab.ID(m.opts.placeholder); ok {
		return id
	}
	id, _ := m.vocab.ID(vocab.PAD)
	return id
}

// Vocabulary returns the word↔id mapping.
func (m *Model) Vocabulary() *vocab.Vocabulary {
	return m.vocab
}

// WordVectors returns a copy of the corrected N × D word vector matrix.
func (m *Model) WordVectors() *mat.Dense {
	return mat.DenseCopyOf(m.vectors)
}

// WordWeights returns the weight table.
func (m *Model) WordWeights() *weight.Table {
	return m.weights
}

// Partition returns the semantic partition of the vocabulary.
func (m *Model) Partition() *cluster.Partition {
	return m.partition
}

// Sources returns per-source loading statistics.
func (m *Model) Sources() []wordvec.SourceStats {
	return append([]wordvec.SourceStats(nil), m.sources...)
}

// Dim returns the embedding length D + K(K+1)/2.
func (m *Model) Dim() int {
	return m.encoder.Dim()
}

// pipeline times, logs and records each stage and normalises its errors.
type pipeline struct {
	ctx  context.Context
	opts options
}

func (p *pipeline) run(stage Stage, fn func() error) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := translateError(fn())
	d := time.Since(start)
	p.opts.logger.LogStage(p.ctx, stage, d, err)
	p.opts.metricsCollector.RecordStage(stage, d, err)
	if err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}
	return nil
}
