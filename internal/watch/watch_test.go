package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type recorder struct {
	mu       sync.Mutex
	events   []string
	rebuilds int
}

func (r *recorder) onEvent(kind, path string) {
	r.mu.Lock()
	r.events = append(r.events, kind+":"+path)
	r.mu.Unlock()
}

func (r *recorder) rebuild() {
	r.mu.Lock()
	r.rebuilds++
	r.mu.Unlock()
}

func (r *recorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func (r *recorder) rebuildCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rebuilds
}

func TestWatch_NewFileTriggersRebuild(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, root, 100*time.Millisecond, testLogger(), rec.onEvent, rec.rebuild)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:new.md")
	}, "expected created:new.md callback")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.rebuildCount() >= 1
	}, "expected a debounced rebuild")
}

func TestWatch_NonMarkdownIgnored(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, root, 100*time.Millisecond, testLogger(), rec.onEvent, rec.rebuild)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "image.png"), []byte("binary"), 0o644)
	time.Sleep(400 * time.Millisecond)

	if rec.has("created:image.png") {
		t.Error("non-markdown file should not fire a callback")
	}
}

func TestWatch_NewDirWatched(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, root, 100*time.Millisecond, testLogger(), rec.onEvent, rec.rebuild)
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(root, "security")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(200 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:security/deep.md")
	}, "file in new subdir not observed")
}

func TestWatch_DeleteReported(t *testing.T) {
	root := t.TempDir()
	_ = os.WriteFile(filepath.Join(root, "del.md"), []byte("# Delete Me"), 0o644)

	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, root, 100*time.Millisecond, testLogger(), rec.onEvent, rec.rebuild)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(root, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("deleted:del.md")
	}, "expected deleted:del.md callback")
}

func TestWatch_BurstDebouncedToOneRebuild(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, root, 300*time.Millisecond, testLogger(), rec.onEvent, rec.rebuild)
	time.Sleep(100 * time.Millisecond)

	// Rapid burst well inside the debounce window.
	for i := 0; i < 5; i++ {
		_ = os.WriteFile(filepath.Join(root, "burst.md"), []byte("v"), 0o644)
		time.Sleep(20 * time.Millisecond)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.rebuildCount() >= 1
	}, "expected a rebuild after the burst")

	// Give any stray timer a chance to fire, then assert it coalesced.
	time.Sleep(500 * time.Millisecond)
	if n := rec.rebuildCount(); n != 1 {
		t.Errorf("rebuilds = %d, want 1 for a single burst", n)
	}
}

func TestWatch_StopsOnContextCancel(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, root, 100*time.Millisecond, testLogger(), nil, nil)
	}()
	time.Sleep(100 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after context cancel")
	}
}
