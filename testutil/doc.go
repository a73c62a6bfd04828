// Package testutil provides testing utilities for s3e.
//
// This package is intended for use in tests only. It generates reproducible
// random word vectors and renders them in the text format vector sources use.
//
//	rng := testutil.NewRNG(seed)
//	m := rng.ClusteredMatrix(100, 8, 3, 0.1)
//	file := testutil.VectorFile(words, m)
package testutil
