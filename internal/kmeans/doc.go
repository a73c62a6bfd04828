// Package kmeans implements weighted k-means clustering with k-means++
// seeding.
//
// Distances are computed block-wise with BLAS GEMM using
// ||x - c||² = ||x||² + ||c||² - 2·x·c. Samples carry weights that bias both
// the seeding and the centroid update.
package kmeans
