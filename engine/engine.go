// Package engine wires all enrichment subsystems together: the job store,
// background runner, retry coordinator, expiration sweeper, rate limiter,
// and metrics collector.
//
// This package exists to break the import cycle: the root enrichment
// package defines the sentinel errors and Config (imported by the store and
// retry packages) and so cannot import those packages back. The engine
// package sits above all subsystem packages and below the application layer.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	enrichment "github.com/latisnere77/suplementia-enrichment"
	"github.com/latisnere77/suplementia-enrichment/backoff"
	"github.com/latisnere77/suplementia-enrichment/id"
	"github.com/latisnere77/suplementia-enrichment/job"
	"github.com/latisnere77/suplementia-enrichment/metrics"
	mw "github.com/latisnere77/suplementia-enrichment/middleware"
	"github.com/latisnere77/suplementia-enrichment/ratelimit"
	"github.com/latisnere77/suplementia-enrichment/retry"
	"github.com/latisnere77/suplementia-enrichment/runner"
	"github.com/latisnere77/suplementia-enrichment/sweep"
)

// meterName is the instrumentation scope name for the engine's middleware.
const meterName = "github.com/latisnere77/suplementia-enrichment"

// Engine wraps a Service with typed subsystem access.
// Use Build() to create one from a Service.
type Engine struct {
	svc       *enrichment.Service
	jobStore  job.Store
	runner    *runner.Runner
	retries   *retry.Coordinator
	sweeper   *sweep.Sweeper
	collector *metrics.Collector
	limiter   *ratelimit.Limiter
	bo        backoff.Strategy
	mws       []mw.Middleware
	logger    *slog.Logger
	now       func() time.Time

	// OTel provider (optional; nil means use global).
	meterProvider metric.MeterProvider

	rateConfig *ratelimit.Config
}

// Option configures an Engine.
type Option func(*Engine)

// WithCollector sets the metrics collector. If not set, a fresh collector
// is created. Pass the same collector given to the store so lifecycle
// counters and latency samples land in one place.
func WithCollector(c *metrics.Collector) Option {
	return func(eng *Engine) {
		eng.collector = c
	}
}

// WithMiddleware adds middleware to the engine's chain, after the default
// stack.
func WithMiddleware(m mw.Middleware) Option {
	return func(eng *Engine) {
		eng.mws = append(eng.mws, m)
	}
}

// WithBackoff sets the strategy used to compute client retry hints.
// If not set, backoff.Default() is used.
func WithBackoff(b backoff.Strategy) Option {
	return func(eng *Engine) {
		eng.bo = b
	}
}

// WithRateLimit enables per-supplement admission limiting.
func WithRateLimit(cfg ratelimit.Config) Option {
	return func(eng *Engine) {
		eng.rateConfig = &cfg
	}
}

// WithMeterProvider sets a custom OTel MeterProvider for the engine.
// When set, both the metrics middleware and the collector registration use
// this provider instead of the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) {
		eng.meterProvider = mp
	}
}

// WithClock sets the time source used to stamp new job IDs. Intended for
// tests.
func WithClock(now func() time.Time) Option {
	return func(eng *Engine) {
		if now != nil {
			eng.now = now
		}
	}
}

// Build creates an Engine from an existing Service.
// The Service's store must implement job.Store.
func Build(svc *enrichment.Service, enrich runner.EnrichFunc, opts ...Option) (*Engine, error) {
	logger := svc.Logger()
	store := svc.Store()

	if store == nil {
		return nil, enrichment.ErrNoStore
	}

	// Type-assert the store to get the job.Store interface.
	js, ok := store.(job.Store)
	if !ok {
		return nil, fmt.Errorf("enrichment: store does not implement job.Store")
	}

	eng := &Engine{
		svc:      svc,
		jobStore: js,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(eng)
	}

	cfg := svc.Config()

	if eng.collector == nil {
		eng.collector = metrics.NewCollector(metrics.WithLatencyCap(cfg.LatencySampleCap))
	}
	if eng.bo == nil {
		eng.bo = backoff.Default()
	}
	if eng.rateConfig != nil {
		eng.limiter = ratelimit.New(*eng.rateConfig)
	}

	// Build metrics middleware (custom provider or global).
	var metricsMw mw.Middleware
	if eng.meterProvider != nil {
		meter := eng.meterProvider.Meter(meterName)
		metricsMw = mw.MetricsWithMeter(eng.collector, meter)
	} else {
		metricsMw = mw.Metrics(eng.collector)
	}

	// Default middleware stack: recover → metrics → logging.
	defaultMws := []mw.Middleware{
		mw.Recover(logger),
		metricsMw,
		mw.Logging(logger),
	}
	allMws := make([]mw.Middleware, 0, len(defaultMws)+len(eng.mws))
	allMws = append(allMws, defaultMws...)
	allMws = append(allMws, eng.mws...)

	runnerOpts := []runner.Option{
		runner.WithConcurrency(cfg.Concurrency),
		runner.WithTimeout(cfg.JobTimeout),
		runner.WithMiddleware(allMws...),
	}
	if eng.limiter != nil {
		limiter := eng.limiter
		runnerOpts = append(runnerOpts, runner.WithFinishHook(func(_ *job.Job, supplement string) {
			limiter.Release(supplement)
		}))
	}
	eng.runner = runner.New(js, enrich, logger, runnerOpts...)

	eng.retries = retry.New(js,
		retry.WithLimit(cfg.RetryLimit),
		retry.WithClock(eng.now),
	)

	eng.sweeper = sweep.New(js, logger, sweep.WithInterval(cfg.SweepInterval))

	// Wire back into the Service.
	svc.SetRunner(eng.runner)
	svc.SetSweeper(eng.sweeper)

	// Expose the collector's counters through OTel.
	var regErr error
	if eng.meterProvider != nil {
		regErr = metrics.RegisterWithMeter(eng.meterProvider.Meter(meterName), eng.collector)
	} else {
		regErr = metrics.Register(eng.collector)
	}
	if regErr != nil {
		logger.Warn("could not register metrics instruments", slog.String("error", regErr.Error()))
	}

	return eng, nil
}

// Enrich creates a new enrichment job for the supplement and schedules its
// analysis in the background. The returned job is in the processing state;
// poll the store for the outcome. Returns ErrRateLimited when the
// per-supplement admission limit rejects the request.
func (eng *Engine) Enrich(ctx context.Context, supplement string) (*job.Job, error) {
	if eng.limiter != nil && !eng.limiter.Acquire(supplement) {
		return nil, enrichment.ErrRateLimited
	}

	j, err := eng.jobStore.Create(ctx, id.New(eng.now()), 0)
	if err != nil {
		if eng.limiter != nil {
			eng.limiter.Release(supplement)
		}
		return nil, err
	}

	eng.runner.Dispatch(ctx, j, supplement)
	return j, nil
}

// RetryEnrichment creates a job continuing previousID's retry chain and
// schedules the analysis again. Returns ErrRetryLimitExceeded when the
// previous job has already passed the retry limit, and ErrRateLimited when
// the admission limit rejects the request.
func (eng *Engine) RetryEnrichment(ctx context.Context, previousID id.JobID, supplement string) (*job.Job, error) {
	exceeded, err := eng.retries.Exceeded(ctx, previousID)
	if err != nil {
		return nil, err
	}
	if exceeded {
		return nil, enrichment.ErrRetryLimitExceeded
	}

	if eng.limiter != nil && !eng.limiter.Acquire(supplement) {
		return nil, enrichment.ErrRateLimited
	}

	j, err := eng.retries.Retry(ctx, previousID)
	if err != nil {
		if eng.limiter != nil {
			eng.limiter.Release(supplement)
		}
		return nil, err
	}

	eng.runner.Dispatch(ctx, j, supplement)
	return j, nil
}

// Service returns the underlying Service.
func (eng *Engine) Service() *enrichment.Service { return eng.svc }

// Store returns the job store.
func (eng *Engine) Store() job.Store { return eng.jobStore }

// Collector returns the metrics collector.
func (eng *Engine) Collector() *metrics.Collector { return eng.collector }

// Coordinator returns the retry coordinator.
func (eng *Engine) Coordinator() *retry.Coordinator { return eng.retries }

// Backoff returns the strategy used for client retry hints.
func (eng *Engine) Backoff() backoff.Strategy { return eng.bo }

// Limiter returns the rate limiter, or nil if no rate limit was configured.
func (eng *Engine) Limiter() *ratelimit.Limiter { return eng.limiter }

// Runner returns the background runner.
func (eng *Engine) Runner() *runner.Runner { return eng.runner }

// Sweeper returns the expiration sweeper.
func (eng *Engine) Sweeper() *sweep.Sweeper { return eng.sweeper }
