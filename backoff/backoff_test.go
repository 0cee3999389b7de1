package backoff_test

import (
	"testing"
	"time"

	"github.com/latisnere77/suplementia-enrichment/backoff"
)

func TestFixed_ReturnsFixedDelay(t *testing.T) {
	f := backoff.NewFixed(5 * time.Second)
	for attempt := 1; attempt <= 10; attempt++ {
		if got := f.Delay(attempt); got != 5*time.Second {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, 5*time.Second)
		}
	}
}

func TestExponential_DoublesEachAttempt(t *testing.T) {
	e := backoff.NewExponential(time.Second, time.Hour)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},  // 1 * 2^0
		{2, 2 * time.Second},  // 1 * 2^1
		{3, 4 * time.Second},  // 1 * 2^2
		{4, 8 * time.Second},  // 1 * 2^3
		{5, 16 * time.Second}, // 1 * 2^4
	}
	for _, tt := range tests {
		if got := e.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestExponential_CapsAtMax(t *testing.T) {
	e := backoff.NewExponential(time.Second, 10*time.Second)

	if got := e.Delay(5); got != 10*time.Second {
		t.Errorf("Delay(5) = %v, want %v (capped at Max)", got, 10*time.Second)
	}
	if got := e.Delay(20); got != 10*time.Second {
		t.Errorf("Delay(20) = %v, want %v (capped at Max)", got, 10*time.Second)
	}
}

func TestExponential_ClampsAttemptBelowOne(t *testing.T) {
	e := backoff.NewExponential(time.Second, time.Minute)

	if got := e.Delay(0); got != time.Second {
		t.Errorf("Delay(0) = %v, want %v", got, time.Second)
	}
	if got := e.Delay(-3); got != time.Second {
		t.Errorf("Delay(-3) = %v, want %v", got, time.Second)
	}
}

func TestExponential_JitterWithinBounds(t *testing.T) {
	e := &backoff.Exponential{Initial: time.Second, Max: 10 * time.Second, Jitter: true}

	for attempt := 1; attempt <= 5; attempt++ {
		for range 100 {
			got := e.Delay(attempt)
			if got < 0 {
				t.Errorf("Delay(%d) = %v, should be >= 0", attempt, got)
			}
			if got > 10*time.Second {
				t.Errorf("Delay(%d) = %v, should be <= %v", attempt, got, 10*time.Second)
			}
		}
	}
}

func TestExponential_JitterProducesVariance(t *testing.T) {
	e := &backoff.Exponential{Initial: time.Second, Max: time.Minute, Jitter: true}

	seen := make(map[time.Duration]bool)
	for range 100 {
		seen[e.Delay(3)] = true
	}
	if len(seen) < 2 {
		t.Errorf("expected variance in jitter, got only %d distinct values", len(seen))
	}
}

func TestDefault_IsDeterministic(t *testing.T) {
	s := backoff.Default()
	if s == nil {
		t.Fatal("Default() returned nil")
	}

	// Client-facing hints must not jitter: repeated calls agree, and the
	// hint never shrinks as the attempt number grows.
	prev := time.Duration(0)
	for attempt := 1; attempt <= 10; attempt++ {
		d := s.Delay(attempt)
		if d != s.Delay(attempt) {
			t.Fatalf("Delay(%d) is not deterministic", attempt)
		}
		if d < prev {
			t.Fatalf("Delay(%d) = %v shrank below Delay(%d) = %v", attempt, d, attempt-1, prev)
		}
		prev = d
	}
}
