package s3e

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with pipeline-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithStage adds a stage field to the logger.
func (l *Logger) WithStage(stage Stage) *Logger {
	return &Logger{
		Logger: l.Logger.With("stage", string(stage)),
	}
}

// WithSource adds a vector source field to the logger.
func (l *Logger) WithSource(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("source", name),
	}
}

// LogStage logs the end of a pipeline stage.
func (l *Logger) LogStage(ctx context.Context, stage Stage, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "stage failed",
			"stage", string(stage),
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "stage completed",
			"stage", string(stage),
			"duration", duration,
		)
	}
}

// LogSource logs how well a vector source covered the vocabulary.
func (l *Logger) LogSource(ctx context.Context, name string, hits, total int) {
	if hits < total/2 {
		l.WarnContext(ctx, "vector source covers less than half of the vocabulary",
			"source", name,
			"hits", hits,
			"vocabulary", total,
		)
		return
	}
	l.InfoContext(ctx, "vector source coverage",
		"source", name,
		"hits", hits,
		"vocabulary", total,
	)
}
