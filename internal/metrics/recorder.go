// Package metrics provides observability hooks for the publish pipeline.
// Components receive a Recorder by injection; the default NoopRecorder keeps
// metrics optional with zero overhead.
package metrics

import "time"

// Recorder defines the metrics operations the pipeline emits. Implementations
// may forward to Prometheus or anything else.
type Recorder interface {
	IncUpload(kind string)
	IncCacheHit(kind string)
	IncSkipped(kind string)
	AddUploadedBytes(n int)
	ObservePhaseDuration(phase string, d time.Duration)
	ObserveCycleDuration(d time.Duration)
	IncCycleOutcome(outcome string) // outcome: success|failed|skipped
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) IncUpload(string)                           {}
func (NoopRecorder) IncCacheHit(string)                         {}
func (NoopRecorder) IncSkipped(string)                          {}
func (NoopRecorder) AddUploadedBytes(int)                       {}
func (NoopRecorder) ObservePhaseDuration(string, time.Duration) {}
func (NoopRecorder) ObserveCycleDuration(time.Duration)         {}
func (NoopRecorder) IncCycleOutcome(string)                     {}
