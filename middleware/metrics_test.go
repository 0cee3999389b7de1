package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/latisnere77/suplementia-enrichment/metrics"
	"github.com/latisnere77/suplementia-enrichment/middleware"
)

func TestMetrics_RecordsLatency(t *testing.T) {
	c := metrics.NewCollector()
	mw := middleware.Metrics(c)

	_, err := mw(context.Background(), testJob(), func(_ context.Context) (json.RawMessage, error) {
		time.Sleep(time.Millisecond)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l := c.LatencySummary()
	if l.Count != 1 {
		t.Fatalf("latency Count = %d, want 1", l.Count)
	}
	if l.Max <= 0 {
		t.Errorf("Max = %v, want > 0", l.Max)
	}
}

func TestMetrics_RecordsLatencyOnError(t *testing.T) {
	c := metrics.NewCollector()
	mw := middleware.Metrics(c)

	want := errors.New("analysis failed")
	_, err := mw(context.Background(), testJob(), func(_ context.Context) (json.RawMessage, error) {
		return nil, want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}

	// Failures count toward the latency sample too.
	if got := c.LatencySummary().Count; got != 1 {
		t.Fatalf("latency Count = %d, want 1", got)
	}
}

func TestMetrics_NilCollector(t *testing.T) {
	mw := middleware.Metrics(nil)

	// Without a collector the middleware is still a valid pass-through.
	want := json.RawMessage(`{"ok":true}`)
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
