package enrichment

import "time"

// Config holds configuration for the enrichment Service.
type Config struct {
	// TTL is how long a job remains queryable after creation. Jobs past
	// their TTL are logically expired regardless of status.
	TTL time.Duration

	// MaxStoreSize bounds how many jobs the store holds at once. Creating
	// a job beyond this bound evicts the oldest-created job first.
	MaxStoreSize int

	// RetryLimit is the inclusive number of retries allowed per chain.
	// A job whose retry count exceeds this limit must not be retried again.
	RetryLimit int

	// LatencySampleCap bounds the rolling latency sample buffer used for
	// percentile computation. Oldest samples are trimmed first.
	LatencySampleCap int

	// SweepInterval is how often expired jobs are cleaned up.
	SweepInterval time.Duration

	// Concurrency is the maximum number of enrichments running at once.
	Concurrency int

	// JobTimeout is the per-enrichment execution deadline. A job that
	// exceeds it is marked with the timeout status.
	JobTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TTL:              5 * time.Minute,
		MaxStoreSize:     1000,
		RetryLimit:       5,
		LatencySampleCap: 10000,
		SweepInterval:    1 * time.Minute,
		Concurrency:      10,
		JobTimeout:       90 * time.Second,
	}
}
