package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for enrichment metrics.
const meterName = "github.com/latisnere77/suplementia-enrichment"

// Register exposes the collector's counters and gauges through the global
// OTel MeterProvider. If no MeterProvider is configured, noop instruments
// are used and registration becomes a pass-through.
func Register(c *Collector) error {
	return RegisterWithMeter(otel.Meter(meterName), c)
}

// RegisterWithMeter registers the collector's instruments on the provided
// meter. This variant allows injecting a specific MeterProvider for testing.
//
// Instruments:
//   - enrichment.jobs.created / completed / failed / timed_out
//     (Int64ObservableCounter): lifecycle totals
//   - enrichment.store.size (Int64ObservableGauge): current entry count
//   - enrichment.store.cleanups (Int64ObservableCounter): sweep invocations
//   - enrichment.store.evictions (Int64ObservableCounter): evicted jobs
func RegisterWithMeter(meter metric.Meter, c *Collector) error {
	created, err := meter.Int64ObservableCounter(
		"enrichment.jobs.created",
		metric.WithDescription("Total number of jobs created"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return err
	}

	completed, err := meter.Int64ObservableCounter(
		"enrichment.jobs.completed",
		metric.WithDescription("Total number of jobs completed"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return err
	}

	failed, err := meter.Int64ObservableCounter(
		"enrichment.jobs.failed",
		metric.WithDescription("Total number of jobs failed"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return err
	}

	timedOut, err := meter.Int64ObservableCounter(
		"enrichment.jobs.timed_out",
		metric.WithDescription("Total number of jobs timed out"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return err
	}

	size, err := meter.Int64ObservableGauge(
		"enrichment.store.size",
		metric.WithDescription("Current number of jobs held by the store"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return err
	}

	cleanups, err := meter.Int64ObservableCounter(
		"enrichment.store.cleanups",
		metric.WithDescription("Total number of expiration sweeps"),
		metric.WithUnit("{sweep}"),
	)
	if err != nil {
		return err
	}

	evictions, err := meter.Int64ObservableCounter(
		"enrichment.store.evictions",
		metric.WithDescription("Total number of jobs evicted for capacity"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			o.ObserveInt64(created, c.created.Load())
			o.ObserveInt64(completed, c.completed.Load())
			o.ObserveInt64(failed, c.failed.Load())
			o.ObserveInt64(timedOut, c.timedOut.Load())
			o.ObserveInt64(size, c.storeSize.Load())
			o.ObserveInt64(cleanups, c.cleanups.Load())
			o.ObserveInt64(evictions, c.evictions.Load())
			return nil
		},
		created, completed, failed, timedOut, size, cleanups, evictions,
	)
	return err
}
