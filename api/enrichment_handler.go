package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/xraph/forge"

	enrichment "github.com/latisnere77/suplementia-enrichment"
	"github.com/latisnere77/suplementia-enrichment/id"
	"github.com/latisnere77/suplementia-enrichment/job"
)

// EnrichRequest is the body for POST /v1/enrichment.
type EnrichRequest struct {
	Supplement string `json:"supplement"`
}

// RetryRequest is the body for POST /v1/enrichment/jobs/:jobId/retry.
// The path parameter carries the previous job's ID; the body re-supplies
// the supplement since the store does not retain it.
type RetryRequest struct {
	Supplement string `json:"supplement"`
}

// EnrichResponse acknowledges an accepted enrichment job.
type EnrichResponse struct {
	JobID      string     `json:"job_id"`
	Status     job.Status `json:"status"`
	RetryCount int        `json:"retry_count"`
}

// RejectionResponse is returned for throttled or exhausted requests, with a
// hint for when the client may try again.
type RejectionResponse struct {
	Error             string `json:"error"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

// GoneResponse is returned for jobs that existed but have since expired.
type GoneResponse struct {
	Error string `json:"error"`
	JobID string `json:"job_id"`
}

func (a *API) startEnrichment(ctx forge.Context, req *EnrichRequest) (*EnrichResponse, error) {
	supplement := strings.TrimSpace(req.Supplement)
	if supplement == "" {
		a.eng.Collector().RecordError(http.StatusBadRequest)
		return nil, forge.BadRequest("supplement is required")
	}

	j, err := a.eng.Enrich(ctx.Context(), supplement)
	if errors.Is(err, enrichment.ErrRateLimited) {
		a.eng.Collector().RecordError(http.StatusTooManyRequests)
		return nil, ctx.JSON(http.StatusTooManyRequests, RejectionResponse{
			Error:             "too many enrichment requests for this supplement",
			RetryAfterSeconds: a.retryAfterSeconds(1),
		})
	}
	if err != nil {
		a.eng.Collector().RecordError(http.StatusInternalServerError)
		return nil, fmt.Errorf("start enrichment: %w", err)
	}

	resp := &EnrichResponse{
		JobID:      j.ID.String(),
		Status:     j.Status,
		RetryCount: j.RetryCount,
	}
	return resp, ctx.JSON(http.StatusAccepted, resp)
}

func (a *API) getJob(ctx forge.Context) error {
	jobID, err := id.Parse(ctx.Param("jobId"))
	if err != nil {
		a.eng.Collector().RecordError(http.StatusBadRequest)
		return forge.BadRequest(fmt.Sprintf("invalid job ID: %v", err))
	}

	store := a.eng.Store()
	c := ctx.Context()

	exists, err := store.Exists(c, jobID)
	if err != nil {
		a.eng.Collector().RecordError(http.StatusInternalServerError)
		return forge.InternalError(err)
	}
	if !exists {
		a.eng.Collector().RecordError(http.StatusNotFound)
		return forge.NotFound(fmt.Sprintf("job %s not found", jobID))
	}

	expired, err := store.IsExpired(c, jobID)
	if err != nil {
		a.eng.Collector().RecordError(http.StatusInternalServerError)
		return forge.InternalError(err)
	}
	if expired {
		a.eng.Collector().RecordError(http.StatusGone)
		return ctx.JSON(http.StatusGone, GoneResponse{
			Error: "job expired",
			JobID: jobID.String(),
		})
	}

	j, err := store.Get(c, jobID)
	if err != nil {
		// The job vanished between the existence check and the read.
		if errors.Is(err, enrichment.ErrJobNotFound) {
			a.eng.Collector().RecordError(http.StatusNotFound)
			return forge.NotFound(fmt.Sprintf("job %s not found", jobID))
		}
		a.eng.Collector().RecordError(http.StatusInternalServerError)
		return forge.InternalError(err)
	}

	return ctx.JSON(http.StatusOK, j)
}

func (a *API) retryEnrichment(ctx forge.Context, req *RetryRequest) (*EnrichResponse, error) {
	previousID, err := id.Parse(ctx.Param("jobId"))
	if err != nil {
		a.eng.Collector().RecordError(http.StatusBadRequest)
		return nil, forge.BadRequest(fmt.Sprintf("invalid job ID: %v", err))
	}

	supplement := strings.TrimSpace(req.Supplement)
	if supplement == "" {
		a.eng.Collector().RecordError(http.StatusBadRequest)
		return nil, forge.BadRequest("supplement is required")
	}

	j, err := a.eng.RetryEnrichment(ctx.Context(), previousID, supplement)
	switch {
	case errors.Is(err, enrichment.ErrRetryLimitExceeded):
		a.eng.Collector().RecordError(http.StatusTooManyRequests)
		return nil, ctx.JSON(http.StatusTooManyRequests, RejectionResponse{
			Error:             "retry limit exceeded for this job chain",
			RetryAfterSeconds: a.retryAfterSeconds(a.nextAttempt(ctx, previousID)),
		})
	case errors.Is(err, enrichment.ErrRateLimited):
		a.eng.Collector().RecordError(http.StatusTooManyRequests)
		return nil, ctx.JSON(http.StatusTooManyRequests, RejectionResponse{
			Error:             "too many enrichment requests for this supplement",
			RetryAfterSeconds: a.retryAfterSeconds(a.nextAttempt(ctx, previousID)),
		})
	case err != nil:
		a.eng.Collector().RecordError(http.StatusInternalServerError)
		return nil, fmt.Errorf("retry enrichment: %w", err)
	}

	resp := &EnrichResponse{
		JobID:      j.ID.String(),
		Status:     j.Status,
		RetryCount: j.RetryCount,
	}
	return resp, ctx.JSON(http.StatusAccepted, resp)
}

// nextAttempt estimates the attempt number a rejected retry would have had,
// so the backoff hint grows with the chain. An unknown previous job counts
// as the first attempt.
func (a *API) nextAttempt(ctx forge.Context, previousID id.JobID) int {
	prev, err := a.eng.Store().Get(ctx.Context(), previousID)
	if err != nil {
		return 1
	}
	return prev.RetryCount + 1
}

// retryAfterSeconds converts the backoff delay for the attempt into whole
// seconds, rounding up so the hint never undershoots.
func (a *API) retryAfterSeconds(attempt int) int {
	d := a.eng.Backoff().Delay(attempt)
	return int(math.Ceil(d.Seconds()))
}
