package wordvec

import (
	"bytes"
	"context"
	"io"

	"github.com/hupe1980/s3e/blobstore"
)

// Source is one pre-trained word vector file: lines of "word v1 v2 … vd".
type Source struct {
	// Name identifies the source in logs and stats.
	Name string
	// Dim is the vector dimensionality. Zero infers it from the first data line.
	Dim int
	// Open returns a fresh reader over the file contents.
	Open func(ctx context.Context) (io.ReadCloser, error)
}

// FromStore reads the named blob, decompressing by extension.
func FromStore(store blobstore.BlobStore, name string, dim int) Source {
	return Source{
		Name: name,
		Dim:  dim,
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			return blobstore.OpenText(ctx, store, name)
		},
	}
}

// FromBytes serves an in-memory file. It can be opened any number of times.
func FromBytes(name string, data []byte, dim int) Source {
	return Source{
		Name: name,
		Dim:  dim,
		Open: func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
