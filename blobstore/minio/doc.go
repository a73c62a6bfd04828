// Package minio provides a BlobStore backed by MinIO or any other
// S3-compatible service (Ceph, Garage, SeaweedFS) through the MinIO client.
//
//	store, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false, "nlp", "vectors/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r, err := blobstore.OpenText(ctx, store, "lexvec.commoncrawl.300d.W.pos.vectors.zst")
//
// Uploads stream through an io.Pipe so embedding matrices never have to be
// buffered in memory before they are written.
package minio
