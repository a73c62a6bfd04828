package blobstore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the stream encoding of a text blob.
type Compression int

const (
	// None is plain text.
	None Compression = iota
	// Gzip is RFC 1952 (".gz").
	Gzip
	// Zstd is Zstandard (".zst", ".zstd").
	Zstd
	// LZ4 is the LZ4 frame format (".lz4").
	LZ4
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// DetectCompression infers the encoding from the blob name's extension.
func DetectCompression(name string) Compression {
	switch strings.ToLower(path.Ext(name)) {
	case ".gz", ".gzip":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return None
	}
}

// OpenText opens the named blob for a sequential scan and transparently
// decompresses it based on its extension. Closing the returned reader
// closes the blob.
func OpenText(ctx context.Context, store BlobStore, name string) (io.ReadCloser, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	raw, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		_ = blob.Close()
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	r, err := NewDecompressor(raw, DetectCompression(name))
	if err != nil {
		_ = raw.Close()
		_ = blob.Close()
		return nil, fmt.Errorf("decompress %s: %w", name, err)
	}
	return &textReader{Reader: r, closers: []io.Closer{r, raw, blob}}, nil
}

// CreateText creates the named blob for writing and compresses the stream
// according to the name's extension. The blob is published when the returned
// writer is closed.
func CreateText(ctx context.Context, store BlobStore, name string) (io.WriteCloser, error) {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	w, err := NewCompressor(blob, DetectCompression(name))
	if err != nil {
		_ = blob.Close()
		return nil, fmt.Errorf("compress %s: %w", name, err)
	}
	return &textWriter{Writer: w, closers: []io.Closer{w, blob}}, nil
}

// NewDecompressor wraps r with a decoder for c.
func NewDecompressor(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		return gzip.NewReader(r)
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}

// NewCompressor wraps w with an encoder for c. Closing the result flushes
// the encoder but does not close w.
func NewCompressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		return zstd.NewWriter(w)
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type textReader struct {
	io.Reader
	closers []io.Closer
}

func (r *textReader) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type textWriter struct {
	io.Writer
	closers []io.Closer
}

func (w *textWriter) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
