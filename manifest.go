package s3e

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/s3e/blobstore"
	"github.com/hupe1980/s3e/codec"
)

// ManifestVersion is bumped when Manifest changes incompatibly.
const ManifestVersion = 1

// Manifest summarises one embedding run. It is written next to the
// embeddings so that a result can be traced back to its inputs.
type Manifest struct {
	Version   int       `json:"version"`
	Codec     string    `json:"codec"`
	CreatedAt time.Time `json:"created_at"`

	Config ManifestConfig `json:"config"`

	Vocabulary   int              `json:"vocabulary"`
	WordDim      int              `json:"word_dim"`
	EmbeddingDim int              `json:"embedding_dim"`
	Sentences    int              `json:"sentences"`
	Sources      []ManifestSource `json:"sources"`

	WeightsMatched int     `json:"weights_matched"`
	Inertia        float64 `json:"inertia"`
	Iterations     int     `json:"iterations"`
	ClusterSizes   []int   `json:"cluster_sizes"`
}

// ManifestConfig records the settings a run used.
type ManifestConfig struct {
	Clusters           int     `json:"clusters"`
	PostProcessing     int     `json:"post_processing"`
	Smoothing          float64 `json:"smoothing"`
	Seed               uint64  `json:"seed"`
	DominantComponents int     `json:"dominant_components"`
	MinCount           int     `json:"min_count"`
	Placeholder        string  `json:"placeholder"`
}

// ManifestSource records how one word vector source matched the vocabulary.
type ManifestSource struct {
	Name      string `json:"name"`
	Dim       int    `json:"dim"`
	Lines     int    `json:"lines"`
	Malformed int    `json:"malformed"`
	Hits      int    `json:"hits"`
	Missing   int    `json:"missing"`
}

// Manifest describes the model and an embedding run over e.
func (m *Model) Manifest(e *Embeddings) Manifest {
	o := m.opts
	_, d := m.vectors.Dims()
	man := Manifest{
		Version:   ManifestVersion,
		Codec:     o.codec.Name(),
		CreatedAt: time.Now().UTC(),
		Config: ManifestConfig{
			Clusters:           o.clusters,
			PostProcessing:     o.postProcessing,
			Smoothing:          o.smoothing,
			Seed:               o.seed,
			DominantComponents: o.dominantComponents,
			MinCount:           o.minCount,
			Placeholder:        o.placeholder,
		},
		Vocabulary:     m.vocab.Len(),
		WordDim:        d,
		EmbeddingDim:   m.Dim(),
		WeightsMatched: m.weights.Stats().Matched,
		Inertia:        m.partition.Inertia,
		Iterations:     m.partition.Iterations,
		ClusterSizes:   m.partition.Sizes(),
	}
	if e != nil {
		man.Sentences = e.Len()
	}
	for _, st := range m.sources {
		man.Sources = append(man.Sources, ManifestSource{
			Name:      st.Name,
			Dim:       st.Dim,
			Lines:     st.Lines,
			Malformed: st.Malformed,
			Hits:      st.Hits,
			Missing:   int(st.Missing.GetCardinality()),
		})
	}
	return man
}

// WriteManifest encodes man with the codec it names and stores it.
func WriteManifest(ctx context.Context, store blobstore.BlobStore, name string, man Manifest) error {
	c, ok := codec.ByName(man.Codec)
	if !ok {
		return fmt.Errorf("%w: unknown codec %q", ErrInvalidOption, man.Codec)
	}
	data, err := c.Marshal(man)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return store.Put(ctx, name, data)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(ctx context.Context, store blobstore.BlobStore, name string) (Manifest, error) {
	var man Manifest
	blob, err := store.Open(ctx, name)
	if err != nil {
		return man, err
	}
	defer blob.Close()

	data := make([]byte, blob.Size())
	if len(data) > 0 {
		n, err := blob.ReadAt(ctx, data, 0)
		if err != nil && (!errors.Is(err, io.EOF) || n < len(data)) {
			return man, fmt.Errorf("read manifest: %w", err)
		}
	}
	// Every built-in codec speaks JSON, so the default can decode any of them.
	if err := codec.Default.Unmarshal(data, &man); err != nil {
		return man, fmt.Errorf("decode manifest: %w", err)
	}
	if man.Version != ManifestVersion {
		return man, fmt.Errorf("%w: manifest version %d", ErrInvalidOption, man.Version)
	}
	return man, nil
}
