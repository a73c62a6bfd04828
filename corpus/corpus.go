// Package corpus reads sentence files: one sentence per line, tokens
// separated by whitespace.
package corpus

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hupe1980/s3e/blobstore"
)

type options struct {
	lowercase   bool
	terminators []string
}

// Option configures Read.
type Option func(*options)

// WithLowercase controls case folding. Enabled by default.
func WithLowercase(on bool) Option {
	return func(o *options) {
		o.lowercase = on
	}
}

// DefaultTerminators are the sentence-final tokens the s3e command strips
// unless told otherwise.
var DefaultTerminators = []string{".", "!", "?"}

// WithTerminators strips any run of the given tokens from the end of each
// sentence, e.g. WithTerminators(".", "!", "?").
func WithTerminators(tokens ...string) Option {
	return func(o *options) {
		o.terminators = tokens
	}
}

// Read returns one token slice per line of r. Blank lines become empty
// sentences so that line numbers and sentence indices stay aligned.
func Read(r io.Reader, optFns ...Option) ([][]string, error) {
	o := options{lowercase: true}
	for _, fn := range optFns {
		fn(&o)
	}

	var sentences [][]string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if o.lowercase {
			line = strings.ToLower(line)
		}
		tokens := strings.Fields(line)
		for len(tokens) > 0 && slices.Contains(o.terminators, tokens[len(tokens)-1]) {
			tokens = tokens[:len(tokens)-1]
		}
		sentences = append(sentences, tokens)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sentences: %w", err)
	}
	return sentences, nil
}

// ReadBlob reads the named blob of store, decompressing by extension.
func ReadBlob(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) ([][]string, error) {
	rc, err := blobstore.OpenText(ctx, store, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Read(rc, optFns...)
}
