// Package sweep drives periodic expiration cleanup against the job store.
// The store itself is driver-agnostic; the sweeper is simply one valid
// driver of its CleanupExpired operation.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/latisnere77/suplementia-enrichment/job"
)

// DefaultSchedule runs the sweep once a minute.
const DefaultSchedule = "@every 1m"

// Sweeper periodically removes expired jobs from a store.
type Sweeper struct {
	store    job.Store
	logger   *slog.Logger
	schedule string

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithSchedule sets a cron schedule expression (robfig/cron syntax,
// "@every 30s" style descriptors included).
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// WithInterval sets a fixed sweep interval. Values <= 0 keep the default.
func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.schedule = fmt.Sprintf("@every %s", d)
		}
	}
}

// New creates a Sweeper over the given store.
func New(store job.Store, logger *slog.Logger, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:    store,
		logger:   logger,
		schedule: DefaultSchedule,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start schedules the periodic sweep. It returns immediately.
func (s *Sweeper) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, s.sweep); err != nil {
		return fmt.Errorf("sweep: invalid schedule %q: %w", s.schedule, err)
	}
	c.Start()

	s.cron = c
	s.running = true

	s.logger.Info("expiration sweeper started", slog.String("schedule", s.schedule))
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish, or
// returns the context's error if it expires first.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	c := s.cron
	s.mu.Unlock()

	stopped := c.Stop()
	select {
	case <-stopped.Done():
		s.logger.Info("expiration sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sweep runs one cleanup pass.
func (s *Sweeper) sweep() {
	removed, err := s.store.CleanupExpired(context.Background())
	if err != nil {
		s.logger.Error("expiration sweep failed", slog.String("error", err.Error()))
		return
	}
	if removed > 0 {
		s.logger.Info("expired jobs removed", slog.Int("removed", removed))
	}
}
