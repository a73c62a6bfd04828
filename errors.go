package s3e

import (
	"errors"
	"fmt"

	"github.com/hupe1980/s3e/cluster"
	"github.com/hupe1980/s3e/encoder"
	"github.com/hupe1980/s3e/postprocess"
	"github.com/hupe1980/s3e/wordvec"
)

var (
	// ErrEmptyCorpus is returned when there are no sentences to embed.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrNoSources is returned when no word vector source is given.
	ErrNoSources = errors.New("no word vector sources")
	// ErrNoHits is returned when a word vector source matches no word.
	ErrNoHits = errors.New("word vector source matched no vocabulary word")
	// ErrInvalidClusterCount is returned when the cluster count is not in
	// [1, vocabulary size].
	ErrInvalidClusterCount = errors.New("invalid cluster count")
	// ErrInvalidComponents is returned when the post-processing component
	// count is negative or too large for the embedding matrix.
	ErrInvalidComponents = errors.New("invalid post-processing component count")
	// ErrRankDeficient is returned when the word vector matrix cannot support
	// the requested dominant component suppression.
	ErrRankDeficient = errors.New("word vector matrix is rank deficient")
	// ErrInvalidOption is returned for out-of-range option values.
	ErrInvalidOption = errors.New("invalid option")
	// ErrIndexOutOfRange is returned when an embedding row does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// ErrDimensionMismatch indicates rows of different widths.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	if e.Expected == 0 && e.Actual == 0 && e.cause != nil {
		return "dimension mismatch: " + e.cause.Error()
	}
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, wordvec.ErrNoSources):
		return fmt.Errorf("%w: %w", ErrNoSources, err)
	case errors.Is(err, wordvec.ErrNoHits):
		return fmt.Errorf("%w: %w", ErrNoHits, err)
	case errors.Is(err, wordvec.ErrRankDeficient):
		return fmt.Errorf("%w: %w", ErrRankDeficient, err)
	case errors.Is(err, cluster.ErrInvalidClusterCount):
		return fmt.Errorf("%w: %w", ErrInvalidClusterCount, err)
	case errors.Is(err, postprocess.ErrInvalidComponents):
		return fmt.Errorf("%w: %w", ErrInvalidComponents, err)
	case errors.Is(err, encoder.ErrShapeMismatch):
		return &ErrDimensionMismatch{cause: err}
	}

	return err
}
