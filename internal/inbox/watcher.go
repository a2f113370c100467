// Package inbox turns files dropped into a directory into pipeline runs.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/semaphore"

	"doctranslate-backend/internal/shared/telemetry"
	"doctranslate-backend/internal/shared/util"
)

// Handler processes one file that appeared in the watched directory.
type Handler func(ctx context.Context, path string) error

// Options tunes a Watcher. Zero values pick the defaults.
type Options struct {
	// MaxConcurrent bounds how many files are handled at once. Default 2.
	MaxConcurrent int64
	// Settle is how long a new file must stay unchanged in size before it
	// is handed over. Default 500ms.
	Settle time.Duration
	// Accept filters paths. Nil accepts every regular file.
	Accept func(path string) bool
}

// Watcher feeds new regular files in one directory (not recursive) to a
// Handler.
type Watcher struct {
	dir    string
	handle Handler
	opts   Options
	fs     *fsnotify.Watcher
	sem    *semaphore.Weighted
	wg     sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]bool
}

// New starts watching dir. Call Run to begin dispatching.
func New(dir string, handle Handler, opts Options) (*Watcher, error) {
	if handle == nil {
		return nil, errors.New("inbox: handler is required")
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.Settle <= 0 {
		opts.Settle = 500 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("inbox: create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("inbox: watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:      dir,
		handle:   handle,
		opts:     opts,
		fs:       fsw,
		sem:      semaphore.NewWeighted(opts.MaxConcurrent),
		inFlight: make(map[string]bool),
	}, nil
}

// Run dispatches files until ctx is done, then waits for running handlers
// and releases the watch. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	defer w.wg.Wait()

	telemetry.Info("inbox.started", map[string]any{"dir": w.dir, "max_concurrent": w.opts.MaxConcurrent})
	for {
		select {
		case <-ctx.Done():
			telemetry.Info("inbox.stopping", map[string]any{"dir": w.dir})
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return errors.New("inbox: event stream closed")
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				w.dispatch(ctx, ev.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("inbox: error stream closed")
			}
			telemetry.Warn("inbox.watch_error", map[string]any{"error": util.SanitizeError(err)})
		}
	}
}

// dispatch starts a handler for path unless one is already running for it.
// Repeated write events for a file being copied collapse into that run.
func (w *Watcher) dispatch(ctx context.Context, path string) {
	if w.opts.Accept != nil && !w.opts.Accept(path) {
		return
	}
	w.mu.Lock()
	if w.inFlight[path] {
		w.mu.Unlock()
		return
	}
	w.inFlight[path] = true
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.release(path)

		if !w.settled(ctx, path) {
			return
		}
		if err := w.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer w.sem.Release(1)

		start := time.Now()
		err := w.handle(ctx, path)
		fields := map[string]any{
			"path":        path,
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
		}
		if err != nil {
			fields["error"] = util.SanitizeError(err)
			telemetry.Warn("inbox.file_failed", fields)
			return
		}
		telemetry.Info("inbox.file_done", fields)
	}()
}

func (w *Watcher) release(path string) {
	w.mu.Lock()
	delete(w.inFlight, path)
	w.mu.Unlock()
}

// settled waits until path is a regular file whose size did not change over
// one Settle interval.
func (w *Watcher) settled(ctx context.Context, path string) bool {
	last := int64(-1)
	for {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return false
		}
		if info.Size() == last {
			return true
		}
		last = info.Size()
		select {
		case <-ctx.Done():
			return false
		case <-time.After(w.opts.Settle):
		}
	}
}
