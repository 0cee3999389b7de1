// Package runner executes the enrichment analysis for created jobs in the
// background and writes the outcome back to the job store: a result on
// success, an error on failure, or the timeout status when the execution
// deadline passes.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/latisnere77/suplementia-enrichment/id"
	"github.com/latisnere77/suplementia-enrichment/job"
	"github.com/latisnere77/suplementia-enrichment/middleware"
)

// EnrichFunc performs the actual analysis for a supplement name. The
// returned payload is stored opaquely on the job.
type EnrichFunc func(ctx context.Context, supplement string) (json.RawMessage, error)

// FinishHook is called after an enrichment finishes and its outcome has
// been written to the store, regardless of outcome.
type FinishHook func(j *job.Job, supplement string)

// Runner schedules enrichments with bounded concurrency.
type Runner struct {
	store   job.Store
	enrich  EnrichFunc
	mw      middleware.Middleware
	sem     *semaphore.Weighted
	timeout time.Duration
	onDone  FinishHook
	logger  *slog.Logger

	wg sync.WaitGroup
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency sets the maximum number of enrichments running at once.
// Values < 1 keep the default.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n >= 1 {
			r.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithTimeout sets the per-enrichment execution deadline. A zero value
// disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// WithMiddleware sets the middleware chain enrichments run through.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(r *Runner) { r.mw = middleware.Chain(mws...) }
}

// WithFinishHook sets a hook invoked after each enrichment's outcome has
// been written to the store.
func WithFinishHook(h FinishHook) Option {
	return func(r *Runner) { r.onDone = h }
}

// New creates a Runner over the given store and analysis function.
func New(store job.Store, enrich EnrichFunc, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		store:   store,
		enrich:  enrich,
		mw:      middleware.Chain(),
		sem:     semaphore.NewWeighted(10),
		timeout: 90 * time.Second,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dispatch schedules the enrichment for an already-created job and returns
// immediately. The outcome is written to the store when the work finishes.
// Concurrency is bounded: excess dispatches wait for a slot rather than
// executing, so the analysis itself never runs unbounded.
func (r *Runner) Dispatch(_ context.Context, j *job.Job, supplement string) {
	cp := *j
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		if err := r.sem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer r.sem.Release(1)

		r.run(&cp, supplement)
	}()
}

// run executes one enrichment through the middleware chain and records
// the outcome.
func (r *Runner) run(j *job.Job, supplement string) {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	terminal := func(ctx context.Context) (json.RawMessage, error) {
		return r.enrich(ctx, supplement)
	}

	result, err := r.mw(ctx, j, terminal)

	switch {
	case err == nil:
		r.record(j.ID, func(ctx context.Context) error {
			return r.store.StoreResult(ctx, j.ID, job.StatusCompleted, result, "")
		})
	case errors.Is(err, context.DeadlineExceeded):
		r.record(j.ID, func(ctx context.Context) error {
			return r.store.MarkTimeout(ctx, j.ID)
		})
	default:
		r.record(j.ID, func(ctx context.Context) error {
			return r.store.StoreResult(ctx, j.ID, job.StatusFailed, nil, err.Error())
		})
	}

	if r.onDone != nil {
		r.onDone(j, supplement)
	}
}

// record writes an outcome to the store. A job that disappeared in the
// meantime (expired or evicted) is expected and only logged at debug.
func (r *Runner) record(jobID id.JobID, write func(ctx context.Context) error) {
	if err := write(context.Background()); err != nil {
		r.logger.Debug("could not record enrichment outcome",
			slog.String("job_id", jobID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// Stop waits for all dispatched enrichments to finish, or returns the
// context's error if it expires first. In-flight analyses are not
// cancelled; their outcomes may still land in the store afterwards.
func (r *Runner) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
