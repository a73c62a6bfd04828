// Package config loads the YAML run configuration used by the s3e command.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/s3e"
	"github.com/hupe1980/s3e/blobstore"
	"github.com/hupe1980/s3e/blobstore/minio"
	"github.com/hupe1980/s3e/blobstore/s3"
	"github.com/hupe1980/s3e/cluster"
	"github.com/hupe1980/s3e/codec"
	"github.com/hupe1980/s3e/corpus"
	"github.com/hupe1980/s3e/postprocess"
	"github.com/hupe1980/s3e/weight"
	"github.com/hupe1980/s3e/wordvec"
)

// Store kinds.
const (
	StoreLocal = "local"
	StoreS3    = "s3"
	StoreMinio = "minio"
)

// Environment variables consulted when the MinIO credentials are not set in
// the file.
const (
	EnvAccessKey = "S3E_ACCESS_KEY"
	EnvSecretKey = "S3E_SECRET_KEY"
)

// Config holds the complete run configuration.
type Config struct {
	// Input and output blob names, resolved against Store.
	Corpus  string         `yaml:"corpus"`
	Vectors []VectorConfig `yaml:"vectors"`
	// Weights is the word frequency file. Empty means uniform weights.
	Weights string `yaml:"weights,omitempty"`
	Out     string `yaml:"out"`
	// Manifest defaults to Out with a ".manifest.json" suffix.
	Manifest string `yaml:"manifest,omitempty"`

	Clusters           int     `yaml:"clusters"`
	PostProcessing     int     `yaml:"post_processing"`
	Smoothing          float64 `yaml:"smoothing"`
	Seed               uint64  `yaml:"seed"`
	Restarts           int     `yaml:"restarts"`
	MaxIter            int     `yaml:"max_iter"`
	DominantComponents int     `yaml:"dominant_components"`
	MinCount           int     `yaml:"min_count,omitempty"`
	Placeholder        string  `yaml:"placeholder"`
	Workers            int     `yaml:"workers,omitempty"`

	Lowercase bool `yaml:"lowercase"`
	// Terminators are stripped from the end of every sentence. An explicit
	// empty list keeps them.
	Terminators []string `yaml:"terminators"`

	Codec string      `yaml:"codec"`
	Log   LogConfig   `yaml:"log"`
	Store StoreConfig `yaml:"store"`
}

// VectorConfig names one word vector file.
type VectorConfig struct {
	Path string `yaml:"path"`
	// Dim is the vector width. Zero infers it from the file.
	Dim int `yaml:"dim,omitempty"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StoreConfig selects where blobs are read from and written to.
type StoreConfig struct {
	Kind   string `yaml:"kind"`
	Root   string `yaml:"root,omitempty"`
	Bucket string `yaml:"bucket,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
	Region string `yaml:"region,omitempty"`
	// Endpoint is required for MinIO and optional for S3-compatible services.
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"-"`
	Secure    bool   `yaml:"secure,omitempty"`
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Out:                "embeddings.txt",
		Clusters:           cluster.DefaultClusters,
		PostProcessing:     postprocess.DefaultComponents,
		Smoothing:          weight.DefaultSmoothing,
		Restarts:           10,
		MaxIter:            300,
		DominantComponents: wordvec.DefaultDominantComponents,
		Placeholder:        s3e.DefaultPlaceholder,
		Lowercase:          true,
		Terminators:        slices.Clone(corpus.DefaultTerminators),
		Codec:              codec.Default.Name(),
		Log:                LogConfig{Level: "info", Format: "text"},
		Store:              StoreConfig{Kind: StoreLocal},
	}
}

// Load reads a YAML file on top of DefaultConfig and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks settings that do not depend on the input data.
func (c *Config) Validate() error {
	if c.Clusters <= 0 {
		return fmt.Errorf("%w: clusters must be positive", s3e.ErrInvalidClusterCount)
	}
	if c.PostProcessing < 0 {
		return fmt.Errorf("%w: post_processing must be non-negative", s3e.ErrInvalidComponents)
	}
	if c.DominantComponents < 0 || c.MinCount < 0 || c.Workers < 0 {
		return fmt.Errorf("%w: counts must be non-negative", s3e.ErrInvalidOption)
	}
	if c.Restarts <= 0 || c.MaxIter <= 0 {
		return fmt.Errorf("%w: restarts and max_iter must be positive", s3e.ErrInvalidOption)
	}
	for i, v := range c.Vectors {
		if v.Path == "" {
			return fmt.Errorf("vectors[%d]: path is required", i)
		}
		if v.Dim < 0 {
			return fmt.Errorf("vectors[%d]: dim must be non-negative", i)
		}
	}
	if _, ok := codec.ByName(c.Codec); !ok {
		return fmt.Errorf("unknown codec %q", c.Codec)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return c.Store.Validate()
}

// Validate checks that the fields required by the store kind are set.
func (s *StoreConfig) Validate() error {
	switch s.Kind {
	case "", StoreLocal:
	case StoreS3:
		if s.Bucket == "" {
			return errors.New("store: s3 requires a bucket")
		}
	case StoreMinio:
		if s.Bucket == "" || s.Endpoint == "" {
			return errors.New("store: minio requires a bucket and an endpoint")
		}
	default:
		return fmt.Errorf("store: unknown kind %q", s.Kind)
	}
	return nil
}

// ParseVector parses a "path[:dim]" flag value.
func ParseVector(s string) (VectorConfig, error) {
	if i := strings.LastIndexByte(s, ':'); i > 0 {
		if dim, err := strconv.Atoi(s[i+1:]); err == nil {
			if dim < 0 {
				return VectorConfig{}, fmt.Errorf("vectors %q: negative dimension", s)
			}
			return VectorConfig{Path: s[:i], Dim: dim}, nil
		}
	}
	if s == "" {
		return VectorConfig{}, errors.New("vectors: empty path")
	}
	return VectorConfig{Path: s}, nil
}

// ManifestName returns the blob name of the run manifest.
func (c *Config) ManifestName() string {
	if c.Manifest != "" {
		return c.Manifest
	}
	return c.Out + ".manifest.json"
}

func (c *Config) level() (slog.Level, error) {
	var lvl slog.Level
	if c.Log.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return lvl, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// Logger builds the logger described by Log.
func (c *Config) Logger() (*s3e.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}
	if c.Log.Format == "json" {
		return s3e.NewJSONLogger(lvl), nil
	}
	return s3e.NewTextLogger(lvl), nil
}

// Options converts the configuration to pipeline options.
func (c *Config) Options() ([]s3e.Option, error) {
	cd, ok := codec.ByName(c.Codec)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", c.Codec)
	}
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}
	opts := []s3e.Option{
		s3e.WithClusters(c.Clusters),
		s3e.WithPostProcessing(c.PostProcessing),
		s3e.WithSmoothing(c.Smoothing),
		s3e.WithSeed(c.Seed),
		s3e.WithRestarts(c.Restarts),
		s3e.WithMaxIter(c.MaxIter),
		s3e.WithDominantComponents(c.DominantComponents),
		s3e.WithMinCount(c.MinCount),
		s3e.WithPlaceholder(c.Placeholder),
		s3e.WithCodec(cd),
		s3e.WithLogger(logger),
	}
	if c.Workers > 0 {
		opts = append(opts, s3e.WithWorkers(c.Workers))
	}
	return opts, nil
}

// CorpusOptions returns the sentence reader options.
func (c *Config) CorpusOptions() []corpus.Option {
	opts := []corpus.Option{corpus.WithLowercase(c.Lowercase)}
	if len(c.Terminators) > 0 {
		opts = append(opts, corpus.WithTerminators(c.Terminators...))
	}
	return opts
}

// Sources returns one word vector source per configured file, read from store.
func (c *Config) Sources(store blobstore.BlobStore) []wordvec.Source {
	sources := make([]wordvec.Source, 0, len(c.Vectors))
	for _, v := range c.Vectors {
		sources = append(sources, wordvec.FromStore(store, v.Path, v.Dim))
	}
	return sources
}

// OpenStore connects to the configured blob store.
func (c *Config) OpenStore(ctx context.Context) (blobstore.BlobStore, error) {
	s := c.Store
	switch s.Kind {
	case "", StoreLocal:
		return blobstore.NewLocalStore(s.Root), nil
	case StoreS3:
		var opts []s3.Option
		if s.Prefix != "" {
			opts = append(opts, s3.WithPrefix(s.Prefix))
		}
		if s.Region != "" {
			opts = append(opts, s3.WithRegion(s.Region))
		}
		if s.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(s.Endpoint))
		}
		return s3.New(ctx, s.Bucket, opts...)
	case StoreMinio:
		access, secret := s.AccessKey, s.SecretKey
		if access == "" {
			access = os.Getenv(EnvAccessKey)
		}
		if secret == "" {
			secret = os.Getenv(EnvSecretKey)
		}
		return minio.Dial(s.Endpoint, access, secret, s.Secure, s.Bucket, s.Prefix)
	default:
		return nil, fmt.Errorf("store: unknown kind %q", s.Kind)
	}
}
