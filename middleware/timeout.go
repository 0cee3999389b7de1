package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/latisnere77/suplementia-enrichment/job"
)

// Timeout returns middleware that enforces a per-enrichment execution
// deadline. When the deadline is exceeded the context is cancelled and the
// handler should return context.DeadlineExceeded, which the runner maps to
// the timeout status. A zero duration disables the deadline.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, j *job.Job, next Handler) (json.RawMessage, error) {
		if d > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
		return next(ctx)
	}
}
