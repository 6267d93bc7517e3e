package llm

import (
	"sort"
	"sync"
	"time"
)

// Snapshot is a point-in-time aggregate of generation-call latencies.
type Snapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
}

// Stats tracks generation-call latencies within a rolling window.
type Stats struct {
	mu     sync.Mutex
	times  []time.Time
	values []int64
	maxAge time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{maxAge: maxAge}
}

func (s *Stats) Record(durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.times = append(s.times, now)
	s.values = append(s.values, durationMs)
}

func (s *Stats) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)

	if len(s.values) == 0 {
		return Snapshot{}
	}

	sorted := make([]int64, len(s.values))
	copy(sorted, s.values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum int64
	for _, v := range sorted {
		sum += v
	}

	return Snapshot{
		Count: len(sorted),
		MinMs: sorted[0],
		MaxMs: sorted[len(sorted)-1],
		AvgMs: float64(sum) / float64(len(sorted)),
		P50Ms: percentile(sorted, 50),
		P95Ms: percentile(sorted, 95),
	}
}

// pruneLocked drops samples older than the window. Samples arrive in time
// order, so the survivors are a suffix.
func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	keep := 0
	for keep < len(s.times) && s.times[keep].Before(cutoff) {
		keep++
	}
	if keep > 0 {
		s.times = append(s.times[:0], s.times[keep:]...)
		s.values = append(s.values[:0], s.values[keep:]...)
	}
}

func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (float64(len(sorted)-1) * pct) / 100.0
	lo := int(idx)
	hi := lo + 1
	if hi >= len(sorted) {
		return float64(sorted[lo])
	}
	weight := idx - float64(lo)
	return float64(sorted[lo]) + (float64(sorted[hi])-float64(sorted[lo]))*weight
}
