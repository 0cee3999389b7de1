// Package metrics provides process-wide observability for the enrichment
// backend: job lifecycle counters, store health gauges, per-status-code
// error counts, and a rolling latency sample for percentile estimation.
//
// The Collector is purely additive: it never fails, never blocks callers,
// and is safe for concurrent use. It implements store.Recorder so the job
// store can report lifecycle events directly.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultLatencyCap is the default bound on the rolling latency sample.
const DefaultLatencyCap = 10000

// Collector aggregates all counters for one process.
type Collector struct {
	created   atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	timedOut  atomic.Int64

	storeSize atomic.Int64
	cleanups  atomic.Int64
	evictions atomic.Int64

	errMu       sync.Mutex
	errorCounts map[int]int64

	latMu   sync.Mutex
	samples []float64 // circular buffer of millisecond values
	next    int
	count   int
	cap     int
}

// Option configures a Collector.
type Option func(*Collector)

// WithLatencyCap bounds the rolling latency sample. Values < 1 keep the
// default. When full, the oldest sample is overwritten first.
func WithLatencyCap(n int) Option {
	return func(c *Collector) {
		if n >= 1 {
			c.cap = n
		}
	}
}

// NewCollector creates an empty Collector.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		errorCounts: make(map[int]int64),
		cap:         DefaultLatencyCap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// JobCreated increments the created-jobs counter.
func (c *Collector) JobCreated() { c.created.Add(1) }

// JobCompleted increments the completed-jobs counter.
func (c *Collector) JobCompleted() { c.completed.Add(1) }

// JobFailed increments the failed-jobs counter.
func (c *Collector) JobFailed() { c.failed.Add(1) }

// JobTimedOut increments the timed-out-jobs counter.
func (c *Collector) JobTimedOut() { c.timedOut.Add(1) }

// CleanupRun counts one expiration sweep. The removed count is reflected
// separately through the StoreSize gauge.
func (c *Collector) CleanupRun(_ int) { c.cleanups.Add(1) }

// Evicted adds a capacity-eviction event's job count to the eviction sum.
func (c *Collector) Evicted(count int) { c.evictions.Add(int64(count)) }

// StoreSize overwrites the last-known store size gauge.
func (c *Collector) StoreSize(size int) { c.storeSize.Store(int64(size)) }

// RecordError counts one error response with the given HTTP-style status
// code. Called by request handlers, not by the store.
func (c *Collector) RecordError(statusCode int) {
	c.errMu.Lock()
	c.errorCounts[statusCode]++
	c.errMu.Unlock()
}

// ObserveLatency appends one request duration to the rolling sample.
func (c *Collector) ObserveLatency(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)

	c.latMu.Lock()
	if c.samples == nil {
		c.samples = make([]float64, 0, min(c.cap, 1024))
	}
	if c.count < c.cap {
		c.samples = append(c.samples, ms)
		c.count++
	} else {
		// Full: overwrite the oldest sample.
		c.samples[c.next] = ms
	}
	c.next = (c.next + 1) % c.cap
	c.latMu.Unlock()
}

// Summary is a point-in-time aggregate of every counter the collector
// tracks, plus derived success-rate and error totals.
type Summary struct {
	JobsCreated   int64 `json:"jobs_created"`
	JobsCompleted int64 `json:"jobs_completed"`
	JobsFailed    int64 `json:"jobs_failed"`
	JobsTimedOut  int64 `json:"jobs_timed_out"`

	StoreSize         int64 `json:"store_size"`
	CleanupOperations int64 `json:"cleanup_operations"`
	Evictions         int64 `json:"evictions"`

	// SuccessRate is completed / (completed + failed + timedOut) * 100,
	// or 0 when no job has reached a terminal status.
	SuccessRate float64 `json:"success_rate"`

	Errors      map[int]int64 `json:"errors"`
	TotalErrors int64         `json:"total_errors"`

	Latency LatencyMetrics `json:"latency"`
}

// Summary returns a consistent-enough snapshot of all counters. Counters
// are read individually; a summary taken concurrently with updates may mix
// adjacent states, which is acceptable for observability reads.
func (c *Collector) Summary() Summary {
	s := Summary{
		JobsCreated:       c.created.Load(),
		JobsCompleted:     c.completed.Load(),
		JobsFailed:        c.failed.Load(),
		JobsTimedOut:      c.timedOut.Load(),
		StoreSize:         c.storeSize.Load(),
		CleanupOperations: c.cleanups.Load(),
		Evictions:         c.evictions.Load(),
		Latency:           c.LatencySummary(),
	}

	terminal := s.JobsCompleted + s.JobsFailed + s.JobsTimedOut
	if terminal > 0 {
		s.SuccessRate = float64(s.JobsCompleted) / float64(terminal) * 100
	}

	c.errMu.Lock()
	s.Errors = make(map[int]int64, len(c.errorCounts))
	for code, n := range c.errorCounts {
		s.Errors[code] = n
		s.TotalErrors += n
	}
	c.errMu.Unlock()

	return s
}

// Reset zeroes all counters and clears the latency sample. Used for test
// isolation, not normal operation.
func (c *Collector) Reset() {
	c.created.Store(0)
	c.completed.Store(0)
	c.failed.Store(0)
	c.timedOut.Store(0)
	c.storeSize.Store(0)
	c.cleanups.Store(0)
	c.evictions.Store(0)

	c.errMu.Lock()
	c.errorCounts = make(map[int]int64)
	c.errMu.Unlock()

	c.latMu.Lock()
	c.samples = nil
	c.next = 0
	c.count = 0
	c.latMu.Unlock()
}
