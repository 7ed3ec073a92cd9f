// Package watch re-runs the publish cycle when the build output directory
// changes. Bundlers emit many files in a burst, so events are debounced
// before a cycle is triggered.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RunFunc executes one publish cycle.
type RunFunc func(ctx context.Context) error

// Watcher debounces filesystem events under the output directory and calls
// the run function once per quiet period.
type Watcher struct {
	dir      string
	run      RunFunc
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	ignore   map[string]struct{}
	stopChan chan struct{}
	stopped  bool
}

// NewWatcher watches dir and its subdirectories. A zero debounce gets a
// 2-second default.
func NewWatcher(dir string, debounce time.Duration, run RunFunc) (*Watcher, error) {
	if run == nil {
		return nil, fmt.Errorf("run function is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolve watch directory: %w", err)
	}

	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	return &Watcher{
		dir:      absDir,
		run:      run,
		watcher:  fsw,
		debounce: debounce,
		logger:   slog.Default(),
		ignore:   make(map[string]struct{}),
		stopChan: make(chan struct{}),
	}, nil
}

// Ignore excludes files the pipeline writes itself (the manifest, for
// one), so a cycle does not retrigger the watcher.
func (w *Watcher) Ignore(names ...string) *Watcher {
	for _, name := range names {
		w.ignore[name] = struct{}{}
	}
	return w
}

// Start begins watching. It returns after the watch loop is running;
// cycles execute on the loop goroutine so runs never overlap.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.logger.Info("Watching build output",
		slog.String("dir", w.dir),
		slog.Duration("debounce", w.debounce))

	go w.loop(ctx)
	return nil
}

// addRecursive registers root and every subdirectory beneath it. fsnotify
// watches are per-directory, so bundler output like img/ and fonts/ needs
// its own watch to be seen at all.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		return w.watcher.Add(p)
	})
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.stopChan)
	if err := w.watcher.Close(); err != nil {
		w.logger.Error("Error closing file watcher", slog.Any("error", err))
	}
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Error("Watch new directory",
							slog.String("dir", event.Name), slog.Any("error", err))
					}
				}
			}
			w.logger.Debug("Output change detected",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.run(ctx); err != nil {
				w.logger.Error("Publish cycle failed", slog.Any("error", err))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watch error", slog.Any("error", err))
		}
	}
}

// relevant filters out events from our own bookkeeping files, which would
// otherwise retrigger the cycle forever.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if _, skip := w.ignore[base]; skip {
		return false
	}
	return true
}
