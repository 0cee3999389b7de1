package metrics

import (
	"math"
	"sort"
)

// LatencyMetrics summarizes the rolling latency sample. All values are in
// milliseconds. On an empty sample every field is zero.
type LatencyMetrics struct {
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// LatencySummary computes percentiles over the current sample using the
// ceiling-index estimator: index = ceil(p/100 * n) - 1, clamped to >= 0.
func (c *Collector) LatencySummary() LatencyMetrics {
	c.latMu.Lock()
	sorted := make([]float64, c.count)
	copy(sorted, c.samples[:c.count])
	c.latMu.Unlock()

	if len(sorted) == 0 {
		return LatencyMetrics{}
	}

	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return LatencyMetrics{
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Avg:   sum / float64(len(sorted)),
		Count: len(sorted),
	}
}

// percentile returns the p-th percentile of a sorted, non-empty sample.
func percentile(sorted []float64, p float64) float64 {
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}
