package corpus

import (
	"context"
	"strings"
	"testing"

	"github.com/hupe1980/s3e/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	in := "Good Movie\n\n  bad   movie .\r\nthe END !\n"

	got, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"good", "movie"},
		{},
		{"bad", "movie", "."},
		{"the", "end", "!"},
	}, got)
}

func TestRead_Options(t *testing.T) {
	in := "Good movie . .\nWow !\n!\n"

	got, err := Read(strings.NewReader(in), WithLowercase(false), WithTerminators(".", "!"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Good", "movie"},
		{"Wow"},
		{},
	}, got)
}

func TestRead_Empty(t *testing.T) {
	got, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadBlob(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "reviews.txt", []byte("great film\nawful plot\n")))

	got, err := ReadBlob(ctx, store, "reviews.txt")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"great", "film"}, {"awful", "plot"}}, got)

	_, err = ReadBlob(ctx, store, "missing.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
