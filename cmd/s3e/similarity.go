package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hupe1980/s3e"
)

func newSimilarityCmd(root *rootFlags) *cobra.Command {
	var embeddings string
	cmd := &cobra.Command{
		Use:   "similarity i j",
		Short: "Cosine similarity of two embedded sentences",
		Long: `Print the cosine similarity of sentences i and j (0-based line numbers of
the corpus) from an embeddings file written by "s3e embed".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("sentence index %q: %w", args[0], err)
			}
			j, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("sentence index %q: %w", args[1], err)
			}

			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Store.Validate(); err != nil {
				return err
			}
			if cmd.Flags().Changed("embeddings") {
				cfg.Out = embeddings
			}

			ctx := commandContext(cmd)
			store, err := cfg.OpenStore(ctx)
			if err != nil {
				return err
			}
			emb, err := s3e.LoadEmbeddings(ctx, store, cfg.Out)
			if err != nil {
				return err
			}
			sim, err := emb.Cosine(i, j)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", sim)
			return err
		},
	}
	cmd.Flags().StringVarP(&embeddings, "embeddings", "e", "", "Embeddings file (default: out from the configuration)")
	return cmd
}
