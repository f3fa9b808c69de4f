package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

const defaultHistogramSize = 4096

// Histogram keeps the most recent duration samples, in milliseconds, in a
// fixed-size ring and summarizes them on demand.
type Histogram struct {
	mu      sync.RWMutex
	samples []float64
	next    int
	full    bool
}

// NewHistogram creates a histogram holding at most size samples.
func NewHistogram(size int) *Histogram {
	if size <= 0 {
		size = defaultHistogramSize
	}
	return &Histogram{samples: make([]float64, size)}
}

// Record adds a duration sample, overwriting the oldest once full.
func (h *Histogram) Record(d time.Duration) {
	ms := float64(d.Microseconds()) / 1000.0

	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples[h.next] = ms
	h.next++
	if h.next == len(h.samples) {
		h.next = 0
		h.full = true
	}
}

func (h *Histogram) count() int {
	if h.full {
		return len(h.samples)
	}
	return h.next
}

// sorted returns a sorted copy of the retained samples.
func (h *Histogram) sorted() []float64 {
	h.mu.RLock()
	out := make([]float64, h.count())
	copy(out, h.samples[:len(out)])
	h.mu.RUnlock()

	sort.Float64s(out)
	return out
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}

// LatencyStats summarizes a histogram. Values are milliseconds.
type LatencyStats struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Summary computes the latency stats over the retained samples.
func (h *Histogram) Summary() LatencyStats {
	s := h.sorted()
	if len(s) == 0 {
		return LatencyStats{}
	}

	var sum float64
	for _, v := range s {
		sum += v
	}

	return LatencyStats{
		Mean:  sum / float64(len(s)),
		P50:   percentile(s, 50),
		P95:   percentile(s, 95),
		Max:   s[len(s)-1],
		Count: len(s),
	}
}
