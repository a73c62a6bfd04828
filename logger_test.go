package s3e

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Stage(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l.WithSource("crawl.vec").LogStage(context.Background(), StageVectors, time.Second, nil)
	assert.Contains(t, buf.String(), "stage completed")
	assert.Contains(t, buf.String(), "source=crawl.vec")
	assert.Contains(t, buf.String(), "stage=vectors")

	buf.Reset()
	l.LogStage(context.Background(), StageCluster, time.Second, errors.New("boom"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "error=boom")
}

func TestLogger_Source(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, nil))

	l.LogSource(context.Background(), "sparse.vec", 10, 100)
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	l.WithStage(StageVectors).LogSource(context.Background(), "dense.vec", 90, 100)
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "stage=vectors")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
