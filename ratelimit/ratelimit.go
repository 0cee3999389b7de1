// Package ratelimit throttles enrichment admissions per supplement.
// Requests for the same supplement share a token bucket and an in-flight
// counter, so a burst of identical lookups cannot monopolise the runner.
package ratelimit

import (
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Config defines per-supplement admission behaviour.
type Config struct {
	// Rate is the maximum sustained admissions per second for a single
	// supplement. Zero disables rate limiting.
	Rate float64

	// Burst is the burst size for the token-bucket limiter. Defaults to 1
	// if Rate is set but Burst is zero.
	Burst int

	// MaxInFlight limits how many enrichments for the same supplement may
	// run simultaneously. Zero means no limit.
	MaxInFlight int
}

// keyState tracks runtime state for a single supplement.
type keyState struct {
	limiter *rate.Limiter
	active  int
}

// Limiter controls per-supplement rate limiting and in-flight concurrency.
// It is safe for concurrent use. Keys are case-insensitive.
type Limiter struct {
	config Config

	mu   sync.Mutex
	keys map[string]*keyState
}

// New creates a Limiter applying the given config to every supplement.
func New(cfg Config) *Limiter {
	return &Limiter{
		config: cfg,
		keys:   make(map[string]*keyState),
	}
}

// Key normalises a supplement name into a limiter key.
func Key(supplement string) string {
	return strings.ToLower(strings.TrimSpace(supplement))
}

// Acquire checks the rate and in-flight limits for the supplement. If the
// enrichment is allowed to proceed it increments the in-flight counter and
// returns true. The caller MUST call Release when the enrichment finishes.
func (l *Limiter) Acquire(supplement string) bool {
	key := Key(supplement)

	l.mu.Lock()
	defer l.mu.Unlock()

	ks := l.keys[key]
	if ks == nil {
		ks = &keyState{}
		if l.config.Rate > 0 {
			burst := l.config.Burst
			if burst <= 0 {
				burst = 1
			}
			ks.limiter = rate.NewLimiter(rate.Limit(l.config.Rate), burst)
		}
		l.keys[key] = ks
	}

	if ks.limiter != nil && !ks.limiter.Allow() {
		return false
	}
	if l.config.MaxInFlight > 0 && ks.active >= l.config.MaxInFlight {
		return false
	}

	ks.active++
	return true
}

// Release decrements the in-flight count for the supplement.
func (l *Limiter) Release(supplement string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ks := l.keys[Key(supplement)]; ks != nil && ks.active > 0 {
		ks.active--
	}
}

// ActiveCount returns the current number of in-flight enrichments for a
// supplement.
func (l *Limiter) ActiveCount(supplement string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ks := l.keys[Key(supplement)]; ks != nil {
		return ks.active
	}
	return 0
}
