package s3e

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/hupe1980/s3e/testutil"
	"github.com/hupe1980/s3e/vocab"
	"github.com/hupe1980/s3e/wordvec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movieSources() []wordvec.Source {
	return []wordvec.Source{
		wordvec.FromBytes("tiny", []byte("good 1 0\nbad -1 0\nmovie 0 1\n"), 2),
	}
}

func movieSentences() [][]string {
	return [][]string{{"good", "movie"}, {"bad", "movie"}}
}

func TestEmbed_GoodBadMovie(t *testing.T) {
	ctx := context.Background()
	emb, model, err := Embed(ctx, movieSentences(), movieSources(), nil,
		WithClusters(1),
		WithPostProcessing(0),
		WithDominantComponents(0),
		WithSeed(1),
	)
	require.NoError(t, err)

	assert.Equal(t, 2, emb.Len())
	assert.Equal(t, 2+1, emb.Dim())
	assert.Equal(t, model.Dim(), emb.Dim())

	good, err := emb.Row(0)
	require.NoError(t, err)
	bad, err := emb.Row(1)
	require.NoError(t, err)

	// Mean-pooled blocks: ((1,0)+(0,1))/2 and ((-1,0)+(0,1))/2.
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, good[:2], 1e-12)
	assert.InDeltaSlice(t, []float64{-0.5, 0.5}, bad[:2], 1e-12)

	// With one cluster the covariance block is a normalised scalar.
	assert.InDeltaSlice(t, good[2:], bad[2:], 1e-12)
	assert.InDelta(t, 1, good[2], 1e-12)

	sim, err := emb.Cosine(0, 1)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(sim))
	assert.Less(t, sim, 1.0)

	self, err := emb.Cosine(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1, self, 1e-12)
}

func TestEmbed_PlaceholderForEmptySentences(t *testing.T) {
	ctx := context.Background()
	sentences := [][]string{{"good", "movie"}, {}, {"unheard", "of"}}

	// Build on the first sentence only so the last one has no known words.
	model, err := Build(ctx, sentences[:1], movieSources(), nil,
		WithClusters(1), WithPostProcessing(0), WithDominantComponents(0))
	require.NoError(t, err)

	emb, err := model.Embed(ctx, sentences)
	require.NoError(t, err)
	require.Equal(t, 3, emb.Len())

	// "." is not in the vocabulary, so both fall back to the padding
	// sentinel, whose vector is the source mean.
	empty, err := emb.Row(1)
	require.NoError(t, err)
	unknown, err := emb.Row(2)
	require.NoError(t, err)
	assert.Equal(t, empty, unknown)
	for _, x := range empty {
		assert.False(t, math.IsNaN(x))
	}

	pad, _ := model.Vocabulary().ID(vocab.PAD)
	assert.Equal(t, pad, model.placeholder)
}

func TestEmbed_PlaceholderInVocabulary(t *testing.T) {
	ctx := context.Background()
	sentences := [][]string{{"good", "movie", "."}, {}}
	sources := []wordvec.Source{
		wordvec.FromBytes("tiny", []byte("good 1 0\nmovie 0 1\n. 3 3\n"), 2),
	}
	model, err := Build(ctx, sentences, sources, nil,
		WithClusters(1), WithPostProcessing(0), WithDominantComponents(0))
	require.NoError(t, err)

	dot, _ := model.Vocabulary().ID(".")
	assert.Equal(t, dot, model.placeholder)

	emb, err := model.Embed(ctx, sentences)
	require.NoError(t, err)
	row, err := emb.Row(1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 3}, row[:2], 1e-12)
}

func TestEmbed_WithWeightsAndSuppression(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(7)
	words := testutil.Words(40)
	vectors := rng.ClusteredMatrix(40, 16, 4, 0.5)

	var sentences [][]string
	for i := 0; i < 30; i++ {
		s := make([]string, 0, 5)
		for j := 0; j < 5; j++ {
			s = append(s, words[rng.IntN(len(words))])
		}
		sentences = append(sentences, s)
	}
	counts := make([]int, len(words))
	for i := range counts {
		counts[i] = 1000 / (i + 1)
	}

	metrics := &BasicMetricsCollector{}
	emb, model, err := Embed(ctx, sentences,
		[]wordvec.Source{
			wordvec.FromBytes("a", testutil.VectorFile(words, vectors), 16),
			wordvec.FromBytes("b", testutil.VectorFile(words[:20], vectors.Slice(0, 20, 0, 8)), 0),
		},
		bytes.NewReader(testutil.FrequencyFile(words, counts)),
		WithClusters(4),
		WithPostProcessing(2),
		WithDominantComponents(3),
		WithSeed(42),
		WithWorkers(4),
		WithMetricsCollector(metrics),
	)
	require.NoError(t, err)

	assert.Equal(t, 30, emb.Len())
	assert.Equal(t, 24+10, emb.Dim())
	assert.Equal(t, 2, emb.Removed())
	assert.Equal(t, 4, model.Partition().K())
	for _, l := range model.Partition().Labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 4)
	}

	w := model.WordWeights()
	for id := 0; id < w.Len(); id++ {
		assert.Greater(t, w.At(id), 0.0)
		assert.LessOrEqual(t, w.At(id), 1.0)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(7), stats.StageCount)
	assert.Equal(t, int64(0), stats.StageErrors)
	assert.Equal(t, int64(2), stats.SourceCount)

	srcs := model.Sources()
	require.Len(t, srcs, 2)
	assert.Equal(t, 8, srcs[1].Dim)
}

func TestEmbed_Reproducible(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(3)
	words := testutil.Words(30)
	file := testutil.VectorFile(words, rng.ClusteredMatrix(30, 12, 3, 1))
	sentences := [][]string{words[:5], words[5:12], words[12:20], words[20:], words[3:9]}

	run := func() [][]float64 {
		emb, _, err := Embed(ctx, sentences,
			[]wordvec.Source{wordvec.FromBytes("v", file, 12)}, nil,
			WithClusters(3), WithDominantComponents(2), WithSeed(99), WithWorkers(3))
		require.NoError(t, err)
		rows := make([][]float64, emb.Len())
		for i := range rows {
			rows[i], _ = emb.Row(i)
		}
		return rows
	}
	assert.Equal(t, run(), run())
}

func TestBuild_ConfigurationErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Build(ctx, nil, movieSources(), nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = Build(ctx, movieSentences(), nil, nil, WithClusters(1))
	assert.ErrorIs(t, err, ErrNoSources)

	_, err = Build(ctx, movieSentences(), movieSources(), nil, WithClusters(0))
	assert.ErrorIs(t, err, ErrInvalidClusterCount)

	_, err = Build(ctx, movieSentences(), movieSources(), nil, WithPostProcessing(-1))
	assert.ErrorIs(t, err, ErrInvalidComponents)

	_, err = Build(ctx, movieSentences(), movieSources(), nil, WithWorkers(0))
	assert.ErrorIs(t, err, ErrInvalidOption)

	// Six words: the cluster count is rejected before any source is opened.
	opened := false
	spy := wordvec.Source{Name: "spy", Dim: 2, Open: func(context.Context) (io.ReadCloser, error) {
		opened = true
		return io.NopCloser(strings.NewReader("good 1 1\n")), nil
	}}
	_, err = Build(ctx, movieSentences(), []wordvec.Source{spy}, nil, WithClusters(7))
	assert.ErrorIs(t, err, ErrInvalidClusterCount)
	assert.False(t, opened)

	// Two dimensions cannot support ten dominant components.
	_, err = Build(ctx, movieSentences(), movieSources(), nil, WithClusters(1))
	assert.ErrorIs(t, err, ErrRankDeficient)
	assert.ErrorIs(t, err, wordvec.ErrRankDeficient)

	_, err = Build(ctx, movieSentences(),
		[]wordvec.Source{wordvec.FromBytes("none", []byte("zebra 1 1\n"), 2)}, nil,
		WithClusters(1), WithDominantComponents(0))
	assert.ErrorIs(t, err, ErrNoHits)
}

func TestEmbed_InvalidComponents(t *testing.T) {
	ctx := context.Background()
	model, err := Build(ctx, movieSentences(), movieSources(), nil,
		WithClusters(1), WithDominantComponents(0), WithPostProcessing(2))
	require.NoError(t, err)

	_, err = model.Embed(ctx, movieSentences())
	assert.ErrorIs(t, err, ErrInvalidComponents)

	_, err = model.Embed(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestBuild_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, movieSentences(), movieSources(), nil, WithClusters(1), WithDominantComponents(0))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEmbeddings_CosineOutOfRange(t *testing.T) {
	emb, _, err := Embed(context.Background(), movieSentences(), movieSources(), nil,
		WithClusters(1), WithPostProcessing(0), WithDominantComponents(0))
	require.NoError(t, err)

	_, err = emb.Cosine(0, 2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = emb.Row(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestEmbed_SingleWordSingleCluster(t *testing.T) {
	ctx := context.Background()
	sentences := [][]string{{"good"}}

	emb, _, err := Embed(ctx, sentences, movieSources(), nil,
		WithClusters(1), WithPostProcessing(0), WithDominantComponents(0))
	require.NoError(t, err)
	require.Equal(t, 1, emb.Len())

	row, err := emb.Row(0)
	require.NoError(t, err)
	require.Len(t, row, 2+1)
	for _, x := range row {
		assert.False(t, math.IsNaN(x))
	}
	assert.InDeltaSlice(t, []float64{1, 0}, row[:2], 1e-12)

	// The default single component cannot be removed from a single row.
	_, _, err = Embed(ctx, sentences, movieSources(), nil,
		WithClusters(1), WithDominantComponents(0))
	assert.ErrorIs(t, err, ErrInvalidComponents)
}
