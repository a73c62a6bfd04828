package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/s3e"
	"github.com/hupe1980/s3e/blobstore"
	"github.com/hupe1980/s3e/config"
	"github.com/hupe1980/s3e/corpus"
)

type embedFlags struct {
	vectors        []string
	weights        string
	out            string
	manifest       string
	clusters       int
	postProcessing int
	smoothing      float64
	seed           uint64
	dominant       int
	minCount       int
	workers        int
	terminators    []string
	keepTerms      bool
}

func newEmbedCmd(root *rootFlags) *cobra.Command {
	f := &embedFlags{}
	cmd := &cobra.Command{
		Use:   "embed [corpus]",
		Short: "Embed every sentence of a corpus",
		Long: `Embed every sentence of a corpus file, one sentence per line.

The embeddings are written one row per line in the input order, followed by a
manifest that records the settings and vector coverage of the run.

Examples:
  s3e embed sentences.txt --vectors glove.840B.300d.txt.gz:300 --weights enwiki_vocab_min200.txt
  s3e embed sentences.txt --vectors a.vec --vectors b.vec --clusters 20 --out emb.txt.zst
  s3e embed --config run.yaml --store s3 --bucket embeddings`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg, args); err != nil {
				return err
			}
			return runEmbed(cmd, cfg)
		},
	}

	fl := cmd.Flags()
	fl.StringArrayVarP(&f.vectors, "vectors", "v", nil, "Word vector file as path[:dim]; repeat for several sources")
	fl.StringVarP(&f.weights, "weights", "w", "", "Word frequency file (word count per line)")
	fl.StringVarP(&f.out, "out", "o", "", "Output file for the embeddings")
	fl.StringVar(&f.manifest, "manifest", "", "Output file for the run manifest (default <out>.manifest.json)")
	fl.IntVarP(&f.clusters, "clusters", "k", 0, "Number of semantic groups")
	fl.IntVarP(&f.postProcessing, "postprocessing", "p", 0, "Dominant directions removed from the embeddings")
	fl.Float64Var(&f.smoothing, "smoothing", 0, "SIF smoothing parameter a")
	fl.Uint64Var(&f.seed, "seed", 0, "Clustering seed")
	fl.IntVar(&f.dominant, "dominant-components", 0, "Principal directions shrunk in the word vectors")
	fl.IntVar(&f.minCount, "min-count", 0, "Drop corpus words seen fewer times")
	fl.IntVar(&f.workers, "workers", 0, "Goroutines for loading and encoding (default GOMAXPROCS)")
	fl.StringSliceVar(&f.terminators, "terminators", nil, "Tokens stripped from the end of each sentence (default . ! ?)")
	fl.BoolVar(&f.keepTerms, "keep-terminators", false, "Keep sentence-final terminator tokens")
	return cmd
}

// apply overrides cfg with the flags that were set explicitly.
func (f *embedFlags) apply(cmd *cobra.Command, cfg *config.Config, args []string) error {
	fl := cmd.Flags()
	if len(args) == 1 {
		cfg.Corpus = args[0]
	}
	if fl.Changed("vectors") {
		cfg.Vectors = cfg.Vectors[:0]
		for _, v := range f.vectors {
			vc, err := config.ParseVector(v)
			if err != nil {
				return err
			}
			cfg.Vectors = append(cfg.Vectors, vc)
		}
	}
	if fl.Changed("weights") {
		cfg.Weights = f.weights
	}
	if fl.Changed("out") {
		cfg.Out = f.out
	}
	if fl.Changed("manifest") {
		cfg.Manifest = f.manifest
	}
	if fl.Changed("clusters") {
		cfg.Clusters = f.clusters
	}
	if fl.Changed("postprocessing") {
		cfg.PostProcessing = f.postProcessing
	}
	if fl.Changed("smoothing") {
		cfg.Smoothing = f.smoothing
	}
	if fl.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fl.Changed("dominant-components") {
		cfg.DominantComponents = f.dominant
	}
	if fl.Changed("min-count") {
		cfg.MinCount = f.minCount
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("terminators") {
		cfg.Terminators = f.terminators
	}
	if f.keepTerms {
		cfg.Terminators = nil
	}

	if cfg.Corpus == "" {
		return errors.New("no corpus given")
	}
	if len(cfg.Vectors) == 0 {
		return errors.New("at least one --vectors file is required")
	}
	return cfg.Validate()
}

func runEmbed(cmd *cobra.Command, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cfg.OpenStore(ctx)
	if err != nil {
		return err
	}

	sentences, err := corpus.ReadBlob(ctx, store, cfg.Corpus, cfg.CorpusOptions()...)
	if err != nil {
		return err
	}

	var freq io.Reader
	if cfg.Weights != "" {
		rc, err := blobstore.OpenText(ctx, store, cfg.Weights)
		if err != nil {
			return err
		}
		defer rc.Close()
		freq = rc
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	metrics := &s3e.BasicMetricsCollector{}
	opts = append(opts, s3e.WithMetricsCollector(metrics))

	emb, model, err := s3e.Embed(ctx, sentences, cfg.Sources(store), freq, opts...)
	if err != nil {
		return err
	}

	if err := emb.Save(ctx, store, cfg.Out); err != nil {
		return err
	}
	if err := s3e.WriteManifest(ctx, store, cfg.ManifestName(), model.Manifest(emb)); err != nil {
		return err
	}

	return printSummary(cmd.OutOrStdout(), cfg, emb, model, metrics.GetStats())
}

func printSummary(w io.Writer, cfg *config.Config, emb *s3e.Embeddings, model *s3e.Model, stats s3e.BasicMetricsStats) error {
	_, err := fmt.Fprintf(w, "embedded %d sentences (vocabulary %d, coverage %.1f%%) into %d dimensions\nwrote %s and %s\n",
		emb.Len(), model.Vocabulary().Len(), 100*stats.Coverage, emb.Dim(), cfg.Out, cfg.ManifestName())
	return err
}

// commandContext returns the command's context or a background one when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
