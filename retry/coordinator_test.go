package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	enrichment "github.com/latisnere77/suplementia-enrichment"
	"github.com/latisnere77/suplementia-enrichment/id"
	"github.com/latisnere77/suplementia-enrichment/job"
	"github.com/latisnere77/suplementia-enrichment/retry"
	"github.com/latisnere77/suplementia-enrichment/store/memory"
)

// testClock hands out strictly increasing instants so minted IDs differ.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func TestRetry_IncrementsCount(t *testing.T) {
	clk := newTestClock()
	st := memory.New(memory.WithClock(clk.Now))
	coord := retry.New(st, retry.WithClock(clk.Now))
	ctx := context.Background()

	first, err := st.Create(ctx, id.New(clk.Now()), 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	second, err := coord.Retry(ctx, first.ID)
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if second.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", second.RetryCount)
	}
	if second.ID == first.ID {
		t.Error("retry job must have a fresh ID")
	}
	if second.Status != job.StatusProcessing {
		t.Errorf("status = %q, want %q", second.Status, job.StatusProcessing)
	}
}

func TestRetry_ChainIsMonotonic(t *testing.T) {
	clk := newTestClock()
	st := memory.New(memory.WithClock(clk.Now))
	coord := retry.New(st, retry.WithClock(clk.Now))
	ctx := context.Background()

	prev, err := st.Create(ctx, id.New(clk.Now()), 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for want := 1; want <= 5; want++ {
		next, retryErr := coord.Retry(ctx, prev.ID)
		if retryErr != nil {
			t.Fatalf("Retry %d: %v", want, retryErr)
		}
		if next.RetryCount != want {
			t.Fatalf("RetryCount = %d, want %d", next.RetryCount, want)
		}
		prev = next
	}
}

func TestRetry_UnknownPreviousJob(t *testing.T) {
	clk := newTestClock()
	st := memory.New(memory.WithClock(clk.Now))
	coord := retry.New(st, retry.WithClock(clk.Now))

	// The previous job expired, was evicted, or never existed; the retry
	// is still recorded as the first visible attempt.
	j, err := coord.Retry(context.Background(), id.New(clk.Now()))
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if j.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", j.RetryCount)
	}
}

func TestExceeded_LimitIsInclusive(t *testing.T) {
	clk := newTestClock()
	st := memory.New(memory.WithClock(clk.Now))
	coord := retry.New(st, retry.WithClock(clk.Now), retry.WithLimit(3))
	ctx := context.Background()

	tests := []struct {
		name  string
		count int
		want  bool
	}{
		{"below limit", 2, false},
		{"at limit", 3, false},
		{"past limit", 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := st.Create(ctx, id.New(clk.Now()), tt.count)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			got, err := coord.Exceeded(ctx, j.ID)
			if err != nil {
				t.Fatalf("Exceeded: %v", err)
			}
			if got != tt.want {
				t.Errorf("Exceeded(count=%d) = %v, want %v", tt.count, got, tt.want)
			}
		})
	}
}

func TestExceeded_UnknownJob(t *testing.T) {
	clk := newTestClock()
	st := memory.New(memory.WithClock(clk.Now))
	coord := retry.New(st, retry.WithClock(clk.Now))

	exceeded, err := coord.Exceeded(context.Background(), id.New(clk.Now()))
	if err != nil {
		t.Fatalf("Exceeded: %v", err)
	}
	if exceeded {
		t.Fatal("unknown job must not report exceeded")
	}
}

func TestRetry_ChainStopsAtLimit(t *testing.T) {
	clk := newTestClock()
	st := memory.New(memory.WithClock(clk.Now))
	coord := retry.New(st, retry.WithClock(clk.Now), retry.WithLimit(2))
	ctx := context.Background()

	prev, err := st.Create(ctx, id.New(clk.Now()), 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Walk the chain the way a handler would: check, then retry.
	attempts := 0
	for {
		exceeded, exErr := coord.Exceeded(ctx, prev.ID)
		if exErr != nil {
			t.Fatalf("Exceeded: %v", exErr)
		}
		if exceeded {
			break
		}
		next, retryErr := coord.Retry(ctx, prev.ID)
		if retryErr != nil {
			t.Fatalf("Retry: %v", retryErr)
		}
		prev = next
		attempts++
		if attempts > 10 {
			t.Fatal("chain never hit the limit")
		}
	}

	// Limit 2 is inclusive: retries with counts 1, 2, and 3 are created
	// (the count-3 job is the first to report exceeded).
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if prev.RetryCount != 3 {
		t.Errorf("final RetryCount = %d, want 3", prev.RetryCount)
	}
}

func TestDefaultLimit(t *testing.T) {
	clk := newTestClock()
	st := memory.New(memory.WithClock(clk.Now))
	coord := retry.New(st)

	if coord.Limit() != retry.DefaultLimit {
		t.Fatalf("Limit = %d, want %d", coord.Limit(), retry.DefaultLimit)
	}

	j, err := st.Create(context.Background(), id.New(clk.Now()), retry.DefaultLimit)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	exceeded, err := coord.Exceeded(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("Exceeded: %v", err)
	}
	if exceeded {
		t.Error("count equal to the default limit is still allowed")
	}
}

func TestRetry_PreservesNotFoundForExpiredButPresent(t *testing.T) {
	clk := newTestClock()
	st := memory.New(memory.WithClock(clk.Now), memory.WithTTL(time.Millisecond))
	coord := retry.New(st, retry.WithClock(clk.Now))
	ctx := context.Background()

	prev, err := st.Create(ctx, id.New(clk.Now()), 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Past its TTL but not yet swept: the chain is still visible, so the
	// count continues from the stored value.
	next, err := coord.Retry(ctx, prev.ID)
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if next.RetryCount != 3 {
		t.Errorf("RetryCount = %d, want 3", next.RetryCount)
	}

	// Once swept, the chain restarts at 1.
	if _, err := st.CleanupExpired(ctx); err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if _, getErr := st.Get(ctx, prev.ID); !errors.Is(getErr, enrichment.ErrJobNotFound) {
		t.Fatal("previous job should have been swept")
	}
	restarted, err := coord.Retry(ctx, prev.ID)
	if err != nil {
		t.Fatalf("Retry after sweep: %v", err)
	}
	if restarted.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", restarted.RetryCount)
	}
}
