package s3e

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting pipeline metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordStage is called after each pipeline stage.
	// duration is the time taken, err is nil if successful.
	RecordStage(stage Stage, duration time.Duration, err error)

	// RecordSource is called once per word vector source with the number of
	// vocabulary words it matched out of total.
	RecordSource(name string, hits, total int)

	// RecordMalformed is called with the number of input lines of the given
	// kind ("vectors", "weights") that were skipped.
	RecordMalformed(kind string, n int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStage(Stage, time.Duration, error) {}
func (NoopMetricsCollector) RecordSource(string, int, int)           {}
func (NoopMetricsCollector) RecordMalformed(string, int)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	StageCount      atomic.Int64
	StageErrors     atomic.Int64
	StageTotalNanos atomic.Int64
	EncodeNanos     atomic.Int64
	SourceCount     atomic.Int64
	SourceHits      atomic.Int64
	SourceWords     atomic.Int64
	MalformedLines  atomic.Int64
}

// RecordStage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStage(stage Stage, duration time.Duration, err error) {
	b.StageCount.Add(1)
	b.StageTotalNanos.Add(duration.Nanoseconds())
	if stage == StageEncode {
		b.EncodeNanos.Add(duration.Nanoseconds())
	}
	if err != nil {
		b.StageErrors.Add(1)
	}
}

// RecordSource implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSource(_ string, hits, total int) {
	b.SourceCount.Add(1)
	b.SourceHits.Add(int64(hits))
	b.SourceWords.Add(int64(total))
}

// RecordMalformed implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMalformed(_ string, n int) {
	b.MalformedLines.Add(int64(n))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		StageCount:      b.StageCount.Load(),
		StageErrors:     b.StageErrors.Load(),
		StageTotalNanos: b.StageTotalNanos.Load(),
		EncodeNanos:     b.EncodeNanos.Load(),
		SourceCount:     b.SourceCount.Load(),
		MalformedLines:  b.MalformedLines.Load(),
	}
	if words := b.SourceWords.Load(); words > 0 {
		stats.Coverage = float64(b.SourceHits.Load()) / float64(words)
	}
	return stats
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	StageCount      int64
	StageErrors     int64
	StageTotalNanos int64
	EncodeNanos     int64
	SourceCount     int64
	// Coverage is the fraction of vocabulary words matched, over all sources.
	Coverage       float64
	MalformedLines int64
}
