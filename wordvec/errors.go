package wordvec

import "errors"

var (
	// ErrNoSources is returned when Load is called without sources.
	ErrNoSources = errors.New("wordvec: no vector sources")
	// ErrNoHits is returned when a source covers no vocabulary word.
	ErrNoHits = errors.New("wordvec: source matched no vocabulary word")
	// ErrRankDeficient is returned when the matrix has too few principal
	// components, or a zero-variance one, for the requested suppression.
	ErrRankDeficient = errors.New("wordvec: matrix rank too low for dominant component suppression")
	// ErrInvalidSource is returned for a source without an Open function or
	// with a negative dimension.
	ErrInvalidSource = errors.New("wordvec: invalid source")
)
