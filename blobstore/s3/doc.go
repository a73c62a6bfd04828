// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// Pre-trained vector files are large and usually shared across machines, so
// the pipeline can stream them straight from a bucket and write embeddings
// back to it.
//
// # Usage
//
//	store, err := s3.New(ctx, "nlp-artifacts",
//	    s3.WithPrefix("word_embedding/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//	r, err := blobstore.OpenText(ctx, store, "crawl-300d-2M.vec.gz")
//
// # Features
//
//   - Range reads for sequential scans and partial fetches
//   - Multipart streaming uploads via the S3 transfer manager
//   - CRC32C checksums on uploads
//   - Automatic pagination for listing
package s3
