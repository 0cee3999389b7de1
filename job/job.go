package job

import (
	"encoding/json"
	"time"

	"github.com/latisnere77/suplementia-enrichment/id"
)

// Status represents the lifecycle state of an enrichment job.
type Status string

const (
	// StatusProcessing means the analysis is still running.
	// It is the initial status of every job.
	StatusProcessing Status = "processing"
	// StatusCompleted means the analysis finished and a result is attached.
	StatusCompleted Status = "completed"
	// StatusFailed means the analysis failed and an error is attached.
	StatusFailed Status = "failed"
	// StatusTimeout means the analysis exceeded its execution deadline.
	StatusTimeout Status = "timeout"
)

// Terminal reports whether s is a terminal status. Terminal statuses do
// not transition further.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusTimeout
}

// Job is the unit of asynchronous work tracked by the store. The Result
// payload is opaque to the store; it never inspects the contents.
type Job struct {
	ID         id.JobID        `json:"id"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
	RetryCount int             `json:"retry_count"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}
