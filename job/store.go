package job

import (
	"context"
	"encoding/json"

	"github.com/latisnere77/suplementia-enrichment/id"
)

// Store defines the lifecycle contract for enrichment jobs. The store is
// the single source of truth for job existence and status; no other
// component mutates a Job once created.
type Store interface {
	// Create inserts a new job in processing state with the given retry
	// count. If the store is at capacity it first evicts the oldest-created
	// jobs to make room, so creation always succeeds for a fresh ID.
	// Reusing an ID is programmer misuse and returns ErrJobAlreadyExists.
	Create(ctx context.Context, jobID id.JobID, retryCount int) (*Job, error)

	// Get retrieves a job by ID. Returns ErrJobNotFound for absent IDs.
	// Reads have no expiration side effects.
	Get(ctx context.Context, jobID id.JobID) (*Job, error)

	// Exists reports whether a job with the given ID is currently held.
	Exists(ctx context.Context, jobID id.JobID) (bool, error)

	// IsExpired reports whether the job should be treated as gone: true
	// when the job does not exist OR its TTL has passed. Callers that need
	// to distinguish "never existed" from "existed then expired" compose
	// this with Exists.
	IsExpired(ctx context.Context, jobID id.JobID) (bool, error)

	// StoreResult sets a terminal status (completed or failed) together
	// with its payload. Re-setting the same terminal status is a no-op;
	// any other transition out of a terminal status returns
	// ErrInvalidStatus. A missing job returns ErrJobNotFound and records
	// no metric.
	StoreResult(ctx context.Context, jobID id.JobID, status Status, result json.RawMessage, errMsg string) error

	// MarkTimeout sets the timeout status if the job exists and is still
	// processing; otherwise it is a no-op.
	MarkTimeout(ctx context.Context, jobID id.JobID) error

	// CleanupExpired removes every job whose TTL has passed and returns
	// the number removed.
	CleanupExpired(ctx context.Context) (int, error)

	// Size returns the current number of jobs held.
	Size(ctx context.Context) (int, error)

	// Clear removes all jobs. Intended for process-wide reset and test
	// isolation, not normal request handling.
	Clear(ctx context.Context) error
}
