package ratewindow

import (
	"testing"
	"time"
)

func TestWindow_RecordCountsInsideWindow(t *testing.T) {
	w := New(Config{Width: time.Second, Cap: 20})
	base := time.Now()

	for i := 0; i < 4; i++ {
		n := w.Record("55119999", base.Add(time.Duration(i)*100*time.Millisecond))
		if n != i+1 {
			t.Fatalf("expected count %d, got %d", i+1, n)
		}
	}
}

func TestWindow_OldEntriesPruned(t *testing.T) {
	w := New(Config{Width: time.Second, Cap: 20})
	base := time.Now()

	w.Record("key", base)
	w.Record("key", base.Add(100*time.Millisecond))

	// Both prior entries are older than the 1s window now.
	n := w.Record("key", base.Add(1500*time.Millisecond))
	if n != 1 {
		t.Fatalf("expected only the new entry in window, got %d", n)
	}
}

func TestWindow_CapBoundsMemory(t *testing.T) {
	w := New(Config{Width: time.Minute, Cap: 5})
	base := time.Now()

	var n int
	for i := 0; i < 50; i++ {
		n = w.Record("burst", base.Add(time.Duration(i)*time.Millisecond))
	}
	if n != 5 {
		t.Fatalf("expected cap of 5, got %d", n)
	}
}

func TestWindow_KeysAreIndependent(t *testing.T) {
	w := New(Config{Width: time.Second, Cap: 20})
	now := time.Now()

	w.Record("a", now)
	w.Record("a", now)
	if got := w.Record("b", now); got != 1 {
		t.Fatalf("key b should not see key a's events, got %d", got)
	}
}

func TestWindow_SweepEvictsIdleKeys(t *testing.T) {
	w := New(Config{Width: 10 * time.Second, Cap: 20})
	base := time.Now()

	w.Record("idle", base)
	w.Record("busy", base.Add(4*time.Minute+59*time.Second))

	evicted := w.Sweep(base.Add(5*time.Minute+time.Second), 5*time.Minute)
	if evicted != 1 {
		t.Fatalf("expected 1 evicted key, got %d", evicted)
	}
	if w.Len() != 1 {
		t.Fatalf("expected 1 remaining key, got %d", w.Len())
	}
}

func TestWindow_RecordInOverridesWidth(t *testing.T) {
	w := New(Config{Width: 10 * time.Second, Cap: 20})
	base := time.Now()

	w.RecordIn("k", base, time.Second)
	if got := w.RecordIn("k", base.Add(2*time.Second), time.Second); got != 1 {
		t.Fatalf("1 s override must prune the 2 s old entry, got %d", got)
	}

	// Zero width falls back to the configured one.
	if got := w.RecordIn("k", base.Add(3*time.Second), 0); got != 2 {
		t.Fatalf("expected fallback to the 10 s width, got %d", got)
	}
}

func TestWindow_CountDoesNotRecord(t *testing.T) {
	w := New(Config{Width: time.Second, Cap: 20})
	now := time.Now()

	w.Record("k", now)
	if got := w.Count("k", now); got != 1 {
		t.Fatalf("expected count 1, got %d", got)
	}
	if got := w.Count("k", now); got != 1 {
		t.Fatalf("Count must not register events, got %d", got)
	}
}
