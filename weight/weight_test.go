package weight

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/hupe1980/s3e/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocab() *vocab.Vocabulary {
	return vocab.Build([][]string{{"the", "movie", "was", "sublime"}})
}

const freqTable = `the 600
movie 300

was 100
`

func TestLoad_SIF(t *testing.T) {
	v := testVocab()
	a := 1e-3
	tbl, err := Load(context.Background(), strings.NewReader(freqTable), v, a)
	require.NoError(t, err)
	require.Equal(t, v.Len(), tbl.Len())

	id := func(w string) int {
		i, ok := v.ID(w)
		require.True(t, ok)
		return i
	}

	assert.InDelta(t, a/(a+0.6), tbl.At(id("the")), 1e-15)
	assert.InDelta(t, a/(a+0.3), tbl.At(id("movie")), 1e-15)
	assert.InDelta(t, a/(a+0.1), tbl.At(id("was")), 1e-15)
	assert.Equal(t, 1.0, tbl.At(id("sublime")))
	assert.Equal(t, 1.0, tbl.At(0))

	// Rarer words weigh more.
	assert.Less(t, tbl.At(id("the")), tbl.At(id("movie")))
	assert.Less(t, tbl.At(id("movie")), tbl.At(id("was")))

	for _, w := range tbl.Weights() {
		assert.Greater(t, w, 0.0)
		assert.LessOrEqual(t, w, 1.0)
	}

	st := tbl.Stats()
	assert.Equal(t, 3, st.Lines)
	assert.Equal(t, 0, st.Malformed)
	assert.Equal(t, 1000.0, st.Total)
	assert.Equal(t, 3, st.Matched)
}

func TestLoad_DisabledSmoothing(t *testing.T) {
	for _, a := range []float64{0, -1} {
		tbl, err := Load(context.Background(), strings.NewReader(freqTable), testVocab(), a)
		require.NoError(t, err)
		for _, w := range tbl.Weights() {
			assert.Equal(t, 1.0, w)
		}
	}
}

func TestLoad_MalformedLinesSkipped(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	input := "the 600\nthis line has four\nmovie abc\nwas -3\nsublime 400\n"
	tbl, err := Load(context.Background(), strings.NewReader(input), testVocab(), 1e-3, WithLogger(logger))
	require.NoError(t, err)

	st := tbl.Stats()
	assert.Equal(t, 5, st.Lines)
	assert.Equal(t, 3, st.Malformed)
	assert.Equal(t, 1000.0, st.Total)
	assert.Contains(t, logs.String(), "skipping malformed frequency line")
	assert.Contains(t, logs.String(), "bad count")
}

func TestLoad_ZeroTotal(t *testing.T) {
	tbl, err := Load(context.Background(), strings.NewReader("the 0\nmovie 0\n"), testVocab(), 1e-3)
	require.NoError(t, err)
	for _, w := range tbl.Weights() {
		assert.Equal(t, 1.0, w)
	}
}

func TestLoad_DuplicateWordsSumIntoTotal(t *testing.T) {
	v := testVocab()
	tbl, err := Load(context.Background(), strings.NewReader("the 10\nthe 30\nmovie 60\n"), v, 1)
	require.NoError(t, err)

	id, _ := v.ID("the")
	assert.InDelta(t, 1/(1+0.3), tbl.At(id), 1e-15)
}

func TestUniform(t *testing.T) {
	v := testVocab()
	tbl := Uniform(v)
	assert.Equal(t, v.Len(), tbl.Len())
	for _, w := range tbl.Weights() {
		assert.Equal(t, 1.0, w)
	}
}
