package ratewindow

import (
	"sync"
	"time"
)

// Config bounds one sliding window: entries older than Width are pruned
// on every Record, and Cap limits how many timestamps a key may hold
// (0 means unlimited up to Width pruning).
type Config struct {
	Width time.Duration
	Cap   int
}

// Window tracks recent event timestamps per key. It is purely an
// in-memory accounting primitive: Record never blocks on I/O and never
// fails, and state is lost on restart by design.
type Window struct {
	mu      sync.Mutex
	cfg     Config
	entries map[string][]time.Time
}

func New(cfg Config) *Window {
	return &Window{
		cfg:     cfg,
		entries: make(map[string][]time.Time),
	}
}

// Record registers one event for key at time now and returns how many
// events (including this one) fall inside the configured window.
func (w *Window) Record(key string, now time.Time) int {
	return w.RecordIn(key, now, w.cfg.Width)
}

// RecordIn registers one event for key at time now, pruning by the
// given width instead of the configured one. Keys with per-caller
// window widths (group config overrides) share one Window this way.
// A width of zero or below falls back to the configured width.
func (w *Window) RecordIn(key string, now time.Time, width time.Duration) int {
	if width <= 0 {
		width = w.cfg.Width
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-width)
	kept := w.entries[key][:0]
	for _, ts := range w.entries[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)

	if w.cfg.Cap > 0 && len(kept) > w.cfg.Cap {
		kept = kept[len(kept)-w.cfg.Cap:]
	}
	w.entries[key] = kept
	return len(kept)
}

// Count returns how many recorded events fall inside the window at
// time now, without registering anything.
func (w *Window) Count(key string, now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-w.cfg.Width)
	n := 0
	for _, ts := range w.entries[key] {
		if ts.After(cutoff) {
			n++
		}
	}
	return n
}

// Sweep drops every key whose newest event is older than maxIdle,
// bounding memory for keys that went quiet. Returns how many keys were
// evicted.
func (w *Window) Sweep(now time.Time, maxIdle time.Duration) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-maxIdle)
	evicted := 0
	for key, stamps := range w.entries {
		if len(stamps) == 0 || stamps[len(stamps)-1].Before(cutoff) {
			delete(w.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len reports how many keys currently hold state.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}
