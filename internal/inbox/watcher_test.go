package inbox

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"doctranslate-backend/internal/shared/telemetry"
)

func startWatcher(t *testing.T, dir string, handle Handler, accept func(string) bool) {
	t.Helper()
	t.Cleanup(telemetry.SetOutput(io.Discard))

	w, err := New(dir, handle, Options{Settle: 20 * time.Millisecond, Accept: accept})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("watcher did not stop")
		}
	})
}

func TestWatcherHandsOverNewFiles(t *testing.T) {
	dir := t.TempDir()
	got := make(chan string, 4)
	startWatcher(t, dir, func(_ context.Context, path string) error {
		got <- filepath.Base(path)
		return nil
	}, func(path string) bool { return strings.HasSuffix(path, ".txt") })

	if err := os.WriteFile(filepath.Join(dir, "ignored.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "letter.txt"), []byte("Hello."), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case name := <-got:
		if name != "letter.txt" {
			t.Fatalf("unexpected file handed over: %s", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for handler")
	}
}

func TestWatcherRunsOncePerBurstOfWrites(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	release := make(chan struct{})
	startWatcher(t, dir, func(ctx context.Context, _ string) error {
		calls.Add(1)
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}, nil)

	path := filepath.Join(dir, "big.txt")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 5; i++ {
		_, _ = f.WriteString("chunk ")
	}
	_ = f.Close()

	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected one handler run, got %d", n)
	}
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), func(context.Context, string) error { return nil }, Options{})
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
