// Package stats keeps rolling render latency figures per render mode.
package stats

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at time.Time
	us int64
}

// Snapshot aggregates the samples of one mode. Durations are microseconds.
type Snapshot struct {
	Count  int     `json:"count"`
	Bytes  int64   `json:"bytes"`
	MinUs  int64   `json:"min_us"`
	MaxUs  int64   `json:"max_us"`
	AvgUs  float64 `json:"avg_us"`
	P50Us  float64 `json:"p50_us"`
	P95Us  float64 `json:"p95_us"`
	P99Us  float64 `json:"p99_us"`
	Errors int     `json:"errors"`
}

type window struct {
	samples []sample
	bytes   int64
	errors  int
}

// Render tracks render latencies within a rolling window, one window per
// mode. Byte and error counters cover the life of the process.
type Render struct {
	mu     sync.Mutex
	modes  map[string]*window
	maxAge time.Duration
	now    func() time.Time
}

func NewRender(maxAge time.Duration) *Render {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Render{
		modes:  make(map[string]*window),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Record adds one render of size bytes that took d.
func (r *Render) Record(mode string, size int, d time.Duration) {
	us := d.Microseconds()
	if us < 0 {
		us = 0
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.windowLocked(mode)
	w.prune(now.Add(-r.maxAge))
	w.samples = append(w.samples, sample{at: now, us: us})
	w.bytes += int64(size)
}

// RecordError counts a failed render.
func (r *Render) RecordError(mode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windowLocked(mode).errors++
}

// Snapshot returns the aggregate for every mode seen so far.
func (r *Render) Snapshot() map[string]Snapshot {
	cutoff := r.now().Add(-r.maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]Snapshot, len(r.modes))
	for mode, w := range r.modes {
		w.prune(cutoff)
		out[mode] = w.snapshot()
	}
	return out
}

func (r *Render) windowLocked(mode string) *window {
	w, ok := r.modes[mode]
	if !ok {
		w = &window{samples: make([]sample, 0, 256)}
		r.modes[mode] = w
	}
	return w
}

func (w *window) prune(cutoff time.Time) {
	w.samples = slices.DeleteFunc(w.samples, func(s sample) bool {
		return s.at.Before(cutoff)
	})
}

func (w *window) snapshot() Snapshot {
	snap := Snapshot{Bytes: w.bytes, Errors: w.errors}
	if len(w.samples) == 0 {
		return snap
	}
	values := make([]int64, len(w.samples))
	var sum int64
	for i, s := range w.samples {
		values[i] = s.us
		sum += s.us
	}
	slices.Sort(values)

	snap.Count = len(values)
	snap.MinUs = values[0]
	snap.MaxUs = values[len(values)-1]
	snap.AvgUs = float64(sum) / float64(len(values))
	snap.P50Us = percentile(values, 50)
	snap.P95Us = percentile(values, 95)
	snap.P99Us = percentile(values, 99)
	return snap
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(index-float64(lower))
}
