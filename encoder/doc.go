// Package encoder turns a sentence of word ids into a fixed-length vector.
//
// The vector has two blocks. The first is the weighted mean of the word
// vectors. The second summarises how the sentence spreads over the semantic
// clusters: per-cluster VLAD residuals form a K × D matrix M, whose row
// centred covariance M·Mᵀ is packed into K(K+1)/2 values and L2-normalised.
//
//	enc, err := encoder.New(vectors, weights, partition)
//	vec, err := enc.Encode([]int{7, 42, 42, 3})
package encoder
