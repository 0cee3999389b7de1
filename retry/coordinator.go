// Package retry builds jobs that continue a previous job's retry chain and
// enforces the chain's retry budget. The store has no notion of chains;
// the coordinator is the only place chain semantics live.
package retry

import (
	"context"
	"errors"
	"time"

	enrichment "github.com/latisnere77/suplementia-enrichment"
	"github.com/latisnere77/suplementia-enrichment/id"
	"github.com/latisnere77/suplementia-enrichment/job"
)

// DefaultLimit is the inclusive number of retries allowed per chain.
const DefaultLimit = 5

// Coordinator creates retry jobs against a job store.
type Coordinator struct {
	store job.Store
	limit int
	now   func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLimit sets the inclusive retry limit. Values < 0 keep the default.
func WithLimit(n int) Option {
	return func(c *Coordinator) {
		if n >= 0 {
			c.limit = n
		}
	}
}

// WithClock sets the time source used to stamp new job IDs. Intended for
// tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Coordinator over the given store.
func New(store job.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store: store,
		limit: DefaultLimit,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Limit returns the coordinator's inclusive retry limit.
func (c *Coordinator) Limit() int { return c.limit }

// Retry creates a new job continuing previousID's retry chain. When the
// previous job is still known, the new job's retry count is the previous
// count plus one. When it is unknown (expired, evicted, or never created),
// the count starts at 1: a retry is being recorded regardless of whether
// the chain's history is visible. Retry never fails for an unknown
// previous job.
func (c *Coordinator) Retry(ctx context.Context, previousID id.JobID) (*job.Job, error) {
	count := 1
	prev, err := c.store.Get(ctx, previousID)
	switch {
	case err == nil:
		count = prev.RetryCount + 1
	case errors.Is(err, enrichment.ErrJobNotFound):
		// Unknown prior job: the chain restarts at the first visible retry.
	default:
		return nil, err
	}

	return c.store.Create(ctx, id.New(c.now()), count)
}

// Exceeded reports whether jobID's retry count has passed the limit. The
// limit is inclusive: a count equal to the limit is still allowed. Unknown
// jobs report false — a job that cannot be found cannot be judged to have
// exceeded anything.
func (c *Coordinator) Exceeded(ctx context.Context, jobID id.JobID) (bool, error) {
	j, err := c.store.Get(ctx, jobID)
	if errors.Is(err, enrichment.ErrJobNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return j.RetryCount > c.limit, nil
}
