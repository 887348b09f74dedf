package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	ch     chan struct{}
}

func newRecorder() *recorder { return &recorder{ch: make(chan struct{}, 16)} }

func (r *recorder) add(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a change event")
	}
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func start(t *testing.T, path string, debounce time.Duration) *recorder {
	t.Helper()
	w, err := New(path, WithDebounce(debounce))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	rec := newRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, rec.add)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return rec
}

func TestWatchCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.drawio")
	if err := os.WriteFile(path, []byte("v0"), 0644); err != nil {
		t.Fatal(err)
	}

	rec := start(t, path, 100*time.Millisecond)
	for i := range 5 {
		if err := os.WriteFile(path, []byte{'v', byte('1' + i)}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	rec.wait(t)
	time.Sleep(300 * time.Millisecond)

	events := rec.snapshot()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 coalesced event", len(events))
	}
	if events[0].Removed {
		t.Error("file still exists")
	}
	if want, _ := filepath.Abs(path); events[0].Path != want {
		t.Errorf("Path = %s, want %s", events[0].Path, want)
	}
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.drawio")
	rec := start(t, path, 50*time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.drawio"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if n := len(rec.snapshot()); n != 0 {
		t.Fatalf("got %d events for a sibling file", n)
	}

	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	rec.wait(t)
}

func TestWatchAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.drawio")
	if err := os.WriteFile(path, []byte("v0"), 0644); err != nil {
		t.Fatal(err)
	}
	rec := start(t, path, 50*time.Millisecond)

	tmp := filepath.Join(dir, ".a.drawio.tmp")
	if err := os.WriteFile(tmp, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	rec.wait(t)

	if events := rec.snapshot(); events[0].Removed {
		t.Error("replaced file should not be reported as removed")
	}
}

func TestWatchRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.drawio")
	if err := os.WriteFile(path, []byte("v0"), 0644); err != nil {
		t.Fatal(err)
	}
	rec := start(t, path, 50*time.Millisecond)

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	rec.wait(t)
	if events := rec.snapshot(); !events[0].Removed {
		t.Error("removal should be reported")
	}
}

func TestNewMissingDirectory(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing", "a.drawio")); err == nil {
		t.Error("missing directory should fail")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "a.drawio"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
