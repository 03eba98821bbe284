package watcher

import (
	"sort"
	"sync"
	"testing"
	"time"
)

func newWatcher(t *testing.T, patterns []string, debounce time.Duration, onChange func([]string)) *Watcher {
	t.Helper()
	w, err := New(patterns, debounce, onChange)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestNew_RequiresCallback(t *testing.T) {
	if _, err := New([]string{"*.liva"}, time.Millisecond, nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}

func TestNew_RejectsBadPattern(t *testing.T) {
	if _, err := New([]string{"[unclosed"}, time.Millisecond, func([]string) {}); err == nil {
		t.Fatal("expected error for a malformed pattern")
	}
}

func TestMatches(t *testing.T) {
	w := newWatcher(t, []string{"*.liva", "liva.toml"}, time.Millisecond, func([]string) {})

	tests := []struct {
		path string
		want bool
	}{
		{"main.liva", true},
		{"/deep/nested/app.liva", true},
		{"liva.toml", true},
		{"main.rs", false},
		{"notes.txt", false},
		{"/src/.liva.swp", false},
	}
	for i, tt := range tests {
		if got := w.matches(tt.path); got != tt.want {
			t.Errorf("tests[%d] - matches(%q) expected=%v, got=%v", i, tt.path, tt.want, got)
		}
	}
}

func TestScheduleChange_CoalescesBurst(t *testing.T) {
	var mu sync.Mutex
	var batches [][]string
	done := make(chan struct{}, 1)

	w := newWatcher(t, []string{"*.liva"}, 20*time.Millisecond, func(paths []string) {
		mu.Lock()
		batches = append(batches, paths)
		mu.Unlock()
		done <- struct{}{}
	})

	w.scheduleChange("a.liva")
	w.scheduleChange("b.liva")
	w.scheduleChange("a.liva")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("flush never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(batches))
	}
	got := append([]string(nil), batches[0]...)
	sort.Strings(got)
	if len(got) != 2 || got[0] != "a.liva" || got[1] != "b.liva" {
		t.Errorf("batch = %v", got)
	}
}

func TestFlushChanges_EmptyPendingIsNoop(t *testing.T) {
	fired := false
	w := newWatcher(t, []string{"*.liva"}, time.Millisecond, func([]string) { fired = true })
	w.flushChanges()
	if fired {
		t.Error("callback must not fire with nothing pending")
	}
}
