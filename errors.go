package enrichment

import "errors"

var (
	// Store errors.
	ErrNoStore = errors.New("enrichment: no store configured")

	// Not found errors.
	ErrJobNotFound = errors.New("enrichment: job not found")

	// Conflict errors.
	ErrJobAlreadyExists = errors.New("enrichment: job already exists")

	// State errors.
	ErrInvalidStatus      = errors.New("enrichment: invalid status transition")
	ErrRetryLimitExceeded = errors.New("enrichment: retry limit exceeded")

	// Admission errors.
	ErrRateLimited = errors.New("enrichment: rate limit exceeded")
)
