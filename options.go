package enrichment

import (
	"context"
	"log/slog"
)

// Option configures a Service.
type Option func(*Service) error

// Storer is the minimal store interface held by the Service.
// It covers lifecycle operations only. The full job contract
// (job.Store) is consumed by subsystem layers that sit above this
// package and therefore cannot be imported here.
type Storer interface {
	Ping(ctx context.Context) error
	Close() error
}

// sweepRunner is an internal interface for the sweeper lifecycle.
type sweepRunner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// jobRunner is an internal interface for the background runner lifecycle.
type jobRunner interface {
	Stop(ctx context.Context) error
}

// Service is the composition root for the enrichment backend. It holds
// the store, configuration, and logger, plus references to the sweeper
// and runner via internal interfaces to avoid import cycles. Use the
// engine package to wire everything together.
type Service struct {
	config  Config
	logger  *slog.Logger
	store   Storer
	sweeper sweepRunner
	runner  jobRunner

	// started tracks whether Start has been called.
	started bool
}

// New creates a new Service with the given options.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Logger returns the service's logger.
func (s *Service) Logger() *slog.Logger { return s.logger }

// Store returns the service's store.
func (s *Service) Store() Storer { return s.store }

// Config returns a copy of the service's configuration.
func (s *Service) Config() Config { return s.config }

// SetSweeper sets the expiration sweeper (called by the engine package).
func (s *Service) SetSweeper(sw sweepRunner) { s.sweeper = sw }

// SetRunner sets the background runner (called by the engine package).
func (s *Service) SetRunner(r jobRunner) { s.runner = r }

// Start begins background processing: the periodic expiration sweep.
func (s *Service) Start(ctx context.Context) error {
	if s.store == nil {
		return ErrNoStore
	}
	if s.sweeper != nil {
		if err := s.sweeper.Start(ctx); err != nil {
			return err
		}
	}
	s.started = true
	return nil
}

// Stop gracefully shuts down the service: the sweeper stops first, then
// in-flight enrichments are drained, then the store is closed.
func (s *Service) Stop(ctx context.Context) error {
	if s.sweeper != nil && s.started {
		if err := s.sweeper.Stop(ctx); err != nil {
			s.logger.Error("sweeper stop error", "error", err)
		}
	}
	if s.runner != nil {
		if err := s.runner.Stop(ctx); err != nil {
			s.logger.Warn("runner drain interrupted", "error", err)
		}
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// WithConfig replaces the full service configuration.
func WithConfig(cfg Config) Option {
	return func(s *Service) error {
		s.config = cfg
		return nil
	}
}

// WithLogger sets the structured logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) error {
		s.logger = l
		return nil
	}
}

// WithStore sets the job store for the service. The store must implement
// Storer at minimum; typically it will be a store.Store which also
// implements the job contract.
func WithStore(st Storer) Option {
	return func(s *Service) error {
		s.store = st
		return nil
	}
}
