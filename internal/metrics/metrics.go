// Package metrics provides a small, backend-agnostic abstraction for recording
// run metrics of the reshape job.
//
// A global backend defaults to a no-op implementation, so instrumentation is
// always safe to call. Concrete systems live in subpackages (prompush for a
// Prometheus Pushgateway, datadog for DogStatsD) and are installed with
// SetBackend by the CLI.
package metrics

import (
	"sync"
	"time"
)

// Metric names shared by all backends.
const (
	StageTotal           = "prgenfuel_stage_total"
	StageDurationSeconds = "prgenfuel_stage_duration_seconds"
	RowsTotal            = "prgenfuel_rows_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStage counts one execution of a pipeline stage and its duration,
// labeled by outcome.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "stage": stage, "status": status}
	b := current()
	b.IncCounter(StageTotal, 1, lbls)
	b.ObserveHistogram(StageDurationSeconds, d.Seconds(), lbls)
}

// RecordRows adds delta to the row counter for kind. Kinds used by the
// pipeline:
//   - "raw":      rows read from the source
//   - "melted":   long rows after merge
//   - "excluded": rows removed by exclusion rules
//   - "cutoff":   rows removed by the date cutoff
//   - "monthly":  rows written to the monthly table
//   - "annual":   rows written to the annual table
//   - "stored":   rows loaded into the database sink
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{"job": job, "kind": kind})
}
