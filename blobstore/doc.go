// Package blobstore provides the storage abstraction for word vector sources,
// frequency tables and embedding outputs.
//
// BlobStore is the interface for reading and writing blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, reads are memory mapped
//   - MemoryStore: in-memory, for tests and pre-loaded data
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Compressed Text
//
// OpenText and CreateText pick a codec from the blob name:
//
//	r, _ := blobstore.OpenText(ctx, store, "crawl-300d-2M.vec.gz")   // gzip
//	r, _ := blobstore.OpenText(ctx, store, "paragram_300.txt.zst")   // zstd
//	w, _ := blobstore.CreateText(ctx, store, "embeddings.txt.lz4")   // lz4
package blobstore
