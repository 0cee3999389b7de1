package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/latisnere77/suplementia-enrichment/id"
	"github.com/latisnere77/suplementia-enrichment/job"
	"github.com/latisnere77/suplementia-enrichment/middleware"
)

func testJob() *job.Job {
	return &job.Job{ID: id.New(time.Now()), Status: job.StatusProcessing}
}

func TestChain_ExecutionOrder(t *testing.T) {
	var order []string

	mw1 := func(ctx context.Context, _ *job.Job, next middleware.Handler) (json.RawMessage, error) {
		order = append(order, "mw1-before")
		result, err := next(ctx)
		order = append(order, "mw1-after")
		return result, err
	}

	mw2 := func(ctx context.Context, _ *job.Job, next middleware.Handler) (json.RawMessage, error) {
		order = append(order, "mw2-before")
		result, err := next(ctx)
		order = append(order, "mw2-after")
		return result, err
	}

	chain := middleware.Chain(mw1, mw2)
	handler := func(_ context.Context) (json.RawMessage, error) {
		order = append(order, "handler")
		return json.RawMessage(`{}`), nil
	}

	if _, err := chain(context.Background(), testJob(), handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"mw1-before", "mw2-before", "handler", "mw2-after", "mw1-after"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(order), order)
	}
	for i, want := range expected {
		if order[i] != want {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want)
		}
	}
}

func TestChain_Empty(t *testing.T) {
	chain := middleware.Chain()
	called := false
	handler := func(_ context.Context) (json.RawMessage, error) {
		called = true
		return nil, nil
	}

	if _, err := chain(context.Background(), testJob(), handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("handler not called with empty chain")
	}
}

func TestChain_PropagatesResultAndError(t *testing.T) {
	mw := func(ctx context.Context, _ *job.Job, next middleware.Handler) (json.RawMessage, error) {
		return next(ctx)
	}
	chain := middleware.Chain(mw)

	wantResult := json.RawMessage(`{"score":9}`)
	result, err := chain(context.Background(), testJob(), func(_ context.Context) (json.RawMessage, error) {
		return wantResult, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != string(wantResult) {
		t.Errorf("result = %s, want %s", result, wantResult)
	}

	wantErr := errors.New("handler error")
	_, err = chain(context.Background(), testJob(), func(_ context.Context) (json.RawMessage, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestRecover_CatchesPanic(t *testing.T) {
	mw := middleware.Recover(slog.Default())

	result, err := mw(context.Background(), testJob(), func(_ context.Context) (json.RawMessage, error) {
		panic("test panic")
	})
	if err == nil {
		t.Fatal("expected error from panic recovery")
	}
	if result != nil {
		t.Errorf("expected nil result after panic, got %s", result)
	}
}

func TestRecover_PassesThrough(t *testing.T) {
	mw := middleware.Recover(slog.Default())

	called := false
	_, err := mw(context.Background(), testJob(), func(_ context.Context) (json.RawMessage, error) {
		called = true
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("handler not called")
	}
}

func TestTimeout_CancelsSlowHandler(t *testing.T) {
	mw := middleware.Timeout(10 * time.Millisecond)

	_, err := mw(context.Background(), testJob(), func(ctx context.Context) (json.RawMessage, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return nil, nil
		}
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestTimeout_ZeroDisablesDeadline(t *testing.T) {
	mw := middleware.Timeout(0)

	_, err := mw(context.Background(), testJob(), func(ctx context.Context) (json.RawMessage, error) {
		if _, ok := ctx.Deadline(); ok {
			t.Error("no deadline expected with zero timeout")
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogging_PassesThrough(t *testing.T) {
	mw := middleware.Logging(slog.Default())

	want := json.RawMessage(`{"done":true}`)
	result, err := mw(context.Background(), testJob(), func(_ context.Context) (json.RawMessage, error) {
		return want, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != string(want) {
		t.Errorf("result = %s, want %s", result, want)
	}
}
