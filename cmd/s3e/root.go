package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/s3e/config"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string

	store    string
	root     string
	bucket   string
	prefix   string
	region   string
	endpoint string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "s3e",
		Short: "S3E - semantic sentence embeddings",
		Long: `S3E builds sentence embeddings from pre-trained word vectors.

Words are grouped into semantic clusters, and each sentence is described by
its weighted mean word vector plus the correlations of its residuals across
clusters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", "", "Log format (text, json)")
	pf.StringVar(&f.store, "store", "", "Blob store kind (local, s3, minio)")
	pf.StringVar(&f.root, "root", "", "Root directory of the local store")
	pf.StringVar(&f.bucket, "bucket", "", "Bucket of the s3 or minio store")
	pf.StringVar(&f.prefix, "prefix", "", "Key prefix inside the bucket")
	pf.StringVar(&f.region, "region", "", "AWS region of the s3 store")
	pf.StringVar(&f.endpoint, "endpoint", "", "Endpoint of an S3-compatible service")

	cmd.AddCommand(newEmbedCmd(f))
	cmd.AddCommand(newSimilarityCmd(f))
	return cmd
}

// load reads the configuration file, if any, and applies the shared flags
// that were set explicitly.
func (f *rootFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("log-level", &cfg.Log.Level, f.logLevel)
	set("log-format", &cfg.Log.Format, f.logFormat)
	set("store", &cfg.Store.Kind, f.store)
	set("root", &cfg.Store.Root, f.root)
	set("bucket", &cfg.Store.Bucket, f.bucket)
	set("prefix", &cfg.Store.Prefix, f.prefix)
	set("region", &cfg.Store.Region, f.region)
	set("endpoint", &cfg.Store.Endpoint, f.endpoint)
	return cfg, nil
}
