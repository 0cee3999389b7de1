package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/latisnere77/suplementia-enrichment/job"
)

// Logging returns middleware that logs enrichment start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) (json.RawMessage, error) {
		logger.Info("enrichment started",
			slog.String("job_id", j.ID.String()),
			slog.Int("retry_count", j.RetryCount),
		)

		start := time.Now()
		result, err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("enrichment failed",
				slog.String("job_id", j.ID.String()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("enrichment completed",
				slog.String("job_id", j.ID.String()),
				slog.Duration("elapsed", elapsed),
			)
		}

		return result, err
	}
}
