package middleware

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/latisnere77/suplementia-enrichment/job"
	"github.com/latisnere77/suplementia-enrichment/metrics"
)

// meterName is the instrumentation scope name for enrichment metrics.
const meterName = "github.com/latisnere77/suplementia-enrichment"

// Metrics returns middleware that feeds each enrichment's duration into
// the collector's rolling latency sample and records per-execution OTel
// instruments using the global MeterProvider. If no MeterProvider is
// configured, noop instruments are used and the OTel half becomes a
// pass-through.
func Metrics(c *metrics.Collector) Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(c, meter)
}

// MetricsWithMeter is like Metrics but uses the provided meter. This
// variant allows injecting a specific MeterProvider for testing.
//
// Instruments:
//   - enrichment.duration (Float64Histogram): execution time in seconds,
//     with attributes: status ("ok" or "error"), retry ("true"/"false")
//   - enrichment.executions (Int64Counter): total executions, same
//     attributes
func MetricsWithMeter(c *metrics.Collector, meter otelmetric.Meter) Middleware {
	// Create instruments once at middleware construction time. OTel
	// instruments are safe for concurrent use. On error, the API returns
	// noop instruments so the middleware degrades gracefully.
	duration, dErr := meter.Float64Histogram(
		"enrichment.duration",
		otelmetric.WithDescription("Duration of enrichment execution in seconds"),
		otelmetric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	executions, eErr := meter.Int64Counter(
		"enrichment.executions",
		otelmetric.WithDescription("Total number of enrichment executions"),
		otelmetric.WithUnit("{execution}"),
	)
	_ = eErr // noop fallback guaranteed by OTel API contract

	return func(ctx context.Context, j *job.Job, next Handler) (json.RawMessage, error) {
		start := time.Now()
		result, err := next(ctx)
		elapsed := time.Since(start)

		if c != nil {
			c.ObserveLatency(elapsed)
		}

		status := "ok"
		if err != nil {
			status = "error"
		}
		retry := "false"
		if j.RetryCount > 0 {
			retry = "true"
		}

		attrs := otelmetric.WithAttributes(
			attribute.String("status", status),
			attribute.String("retry", retry),
		)

		duration.Record(ctx, elapsed.Seconds(), attrs)
		executions.Add(ctx, 1, attrs)

		return result, err
	}
}
