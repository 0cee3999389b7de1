// Package memory provides the bounded, volatile in-memory job store.
// Safe for concurrent access. The store's lifetime is the host process's
// lifetime; restart loses all jobs.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	enrichment "github.com/latisnere77/suplementia-enrichment"
	"github.com/latisnere77/suplementia-enrichment/id"
	"github.com/latisnere77/suplementia-enrichment/job"
	"github.com/latisnere77/suplementia-enrichment/store"
)

// Ensure Store implements store.Store at compile time.
var _ store.Store = (*Store)(nil)

const (
	// DefaultTTL is how long a job remains queryable after creation.
	DefaultTTL = 5 * time.Minute
	// DefaultMaxSize bounds how many jobs the store holds at once.
	DefaultMaxSize = 1000
)

// Store is a bounded in-memory implementation of store.Store. It owns all
// Job records exclusively: creation, status transitions, capacity eviction,
// and expiration cleanup all happen under a single mutex.
//
// Jobs are additionally held in an insertion-order index. Creation
// timestamps come from the store's clock at insertion, so under a monotonic
// clock the index is ordered by ascending CreatedAt with the insertion
// sequence as tie-break. That one index serves both capacity eviction
// (pop from the front until under capacity) and expiration cleanup.
type Store struct {
	mu sync.Mutex

	jobs  map[string]*job.Job
	order []*job.Job

	ttl      time.Duration
	maxSize  int
	now      func() time.Time
	recorder store.Recorder
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the per-job time-to-live. Values <= 0 keep the default.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithMaxSize sets the capacity bound. Values < 1 keep the default.
func WithMaxSize(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.maxSize = n
		}
	}
}

// WithClock sets the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRecorder sets the lifecycle event recorder.
func WithRecorder(r store.Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// New returns a new empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		jobs:     make(map[string]*job.Job),
		ttl:      DefaultTTL,
		maxSize:  DefaultMaxSize,
		now:      func() time.Time { return time.Now().UTC() },
		recorder: store.NopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }

// Create inserts a new job in processing state with the given retry count.
// If the store is at capacity it first evicts the oldest-created jobs, so
// creation always succeeds for a fresh ID.
func (m *Store) Create(_ context.Context, jobID id.JobID, retryCount int) (*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := jobID.String()
	if _, exists := m.jobs[key]; exists {
		return nil, enrichment.ErrJobAlreadyExists
	}

	if evicted := m.evictLocked(m.maxSize - 1); evicted > 0 {
		m.recorder.Evicted(evicted)
	}

	now := m.now()
	j := &job.Job{
		ID:         jobID,
		Status:     job.StatusProcessing,
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.ttl),
		RetryCount: retryCount,
	}
	m.jobs[key] = j
	m.order = append(m.order, j)

	m.recorder.JobCreated()
	m.recorder.StoreSize(len(m.jobs))

	cp := *j
	return &cp, nil
}

// evictLocked removes oldest-created jobs until at most keep remain.
// Returns the number evicted. Callers must hold m.mu.
func (m *Store) evictLocked(keep int) int {
	evicted := 0
	for len(m.jobs) > keep && len(m.order) > 0 {
		oldest := m.order[0]
		m.order[0] = nil
		m.order = m.order[1:]
		delete(m.jobs, oldest.ID.String())
		evicted++
	}
	return evicted
}

// Get retrieves a job by ID. Reads have no expiration side effects.
func (m *Store) Get(_ context.Context, jobID id.JobID) (*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID.String()]
	if !ok {
		return nil, enrichment.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

// Exists reports whether a job with the given ID is currently held.
func (m *Store) Exists(_ context.Context, jobID id.JobID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.jobs[jobID.String()]
	return ok, nil
}

// IsExpired reports whether the job should be treated as gone: true when
// the job does not exist OR its TTL has passed (boundary inclusive).
func (m *Store) IsExpired(_ context.Context, jobID id.JobID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID.String()]
	if !ok {
		return true, nil
	}
	return !m.now().Before(j.ExpiresAt), nil
}

// StoreResult sets a terminal status (completed or failed) with its payload.
// Re-setting the same terminal status is a no-op; any other transition out
// of a terminal status returns ErrInvalidStatus.
func (m *Store) StoreResult(_ context.Context, jobID id.JobID, status job.Status, result json.RawMessage, errMsg string) error {
	if status != job.StatusCompleted && status != job.StatusFailed {
		return enrichment.ErrInvalidStatus
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID.String()]
	if !ok {
		return enrichment.ErrJobNotFound
	}

	if j.Status != job.StatusProcessing {
		if j.Status == status {
			return nil
		}
		return enrichment.ErrInvalidStatus
	}

	j.Status = status
	switch status {
	case job.StatusCompleted:
		j.Result = result
		m.recorder.JobCompleted()
	case job.StatusFailed:
		j.Error = errMsg
		m.recorder.JobFailed()
	}
	return nil
}

// MarkTimeout sets the timeout status if the job exists and is still
// processing; otherwise it is a no-op.
func (m *Store) MarkTimeout(_ context.Context, jobID id.JobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID.String()]
	if !ok {
		return enrichment.ErrJobNotFound
	}
	if j.Status != job.StatusProcessing {
		return nil
	}

	j.Status = job.StatusTimeout
	m.recorder.JobTimedOut()
	return nil
}

// CleanupExpired removes every job whose TTL has passed and returns the
// number removed. Removal is idempotent; a job already gone is not counted.
func (m *Store) CleanupExpired(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	kept := make([]*job.Job, 0, len(m.order))
	removed := 0
	for _, j := range m.order {
		if !now.Before(j.ExpiresAt) {
			delete(m.jobs, j.ID.String())
			removed++
			continue
		}
		kept = append(kept, j)
	}
	m.order = kept

	m.recorder.CleanupRun(removed)
	m.recorder.StoreSize(len(m.jobs))
	return removed, nil
}

// Size returns the current number of jobs held.
func (m *Store) Size(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.jobs), nil
}

// Clear removes all jobs. Intended for process-wide reset and test
// isolation, not normal request handling.
func (m *Store) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobs = make(map[string]*job.Job)
	m.order = nil
	m.recorder.StoreSize(0)
	return nil
}
