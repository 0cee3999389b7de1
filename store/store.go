package store

import (
	"context"

	"github.com/latisnere77/suplementia-enrichment/job"
)

// Store is the backend contract: the job lifecycle contract plus
// lifecycle operations.
type Store interface {
	job.Store

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Recorder receives job lifecycle and store health events. Implementations
// must be safe for concurrent use and must never block the store.
// The metrics package provides the canonical implementation.
type Recorder interface {
	// JobCreated is called once per successful job insertion.
	JobCreated()

	// JobCompleted is called once per completed-status transition.
	JobCompleted()

	// JobFailed is called once per failed-status transition.
	JobFailed()

	// JobTimedOut is called once per timeout-status transition.
	JobTimedOut()

	// CleanupRun is called once per expiration sweep with the number of
	// jobs removed by that sweep.
	CleanupRun(removed int)

	// Evicted is called after a capacity eviction with the number of jobs
	// evicted by that event.
	Evicted(count int)

	// StoreSize is called with the new entry count whenever it changes
	// materially (create, eviction, cleanup, clear).
	StoreSize(size int)
}

// NopRecorder is a Recorder that discards all events.
type NopRecorder struct{}

func (NopRecorder) JobCreated()    {}
func (NopRecorder) JobCompleted()  {}
func (NopRecorder) JobFailed()     {}
func (NopRecorder) JobTimedOut()   {}
func (NopRecorder) CleanupRun(int) {}
func (NopRecorder) Evicted(int)    {}
func (NopRecorder) StoreSize(int)  {}
