// Package watcher keeps the application index current.
//
// It watches the descriptor directories with fsnotify and triggers a full
// index rebuild after changes settle (events are debounced so a burst of
// writes from a package manager causes one rescan, not dozens). A slow
// ticker prunes launch events that have aged out of the usage window.
//
// Key features:
//   - Debounced rebuilds on .desktop file changes
//   - Periodic pruning of expired launch events
//   - Daemon mode support with PID file management
//   - Graceful shutdown with SIGTERM/SIGINT handling
package watcher

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lumen-desktop/lumen/internal/scanner"
)

const (
	defaultDebounce = 500 * time.Millisecond
	pruneInterval   = time.Hour
)

// Core is the part of the launcher the watcher drives.
type Core interface {
	Rebuild() (*scanner.Result, error)
	PruneExpired() (int64, error)
}

// Watcher rebuilds the index when descriptor directories change.
type Watcher struct {
	core Core
	dirs []string

	fsw         *fsnotify.Watcher
	stopCh      chan struct{}
	wg          sync.WaitGroup
	pruneTicker *time.Ticker

	// debounce is shortened by tests.
	debounce time.Duration
}

// New creates a Watcher over the given descriptor directories.
func New(core Core, dirs []string) (*Watcher, error) {
	if core == nil {
		return nil, fmt.Errorf("core cannot be nil")
	}
	return &Watcher{
		core:     core,
		dirs:     dirs,
		stopCh:   make(chan struct{}),
		debounce: defaultDebounce,
	}, nil
}

// Start performs an initial rebuild, then begins watching. Directories that
// do not exist are skipped with a diagnostic; they are common (not every
// XDG data dir is present on every system).
func (w *Watcher) Start() error {
	if _, err := w.core.Rebuild(); err != nil {
		fmt.Fprintf(os.Stderr, "watcher: initial rebuild: %v\n", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	w.fsw = fsw

	watched := 0
	for _, dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			fmt.Fprintf(os.Stderr, "watcher: skipping %s: %v\n", dir, err)
			continue
		}
		watched++
	}
	if watched == 0 {
		fsw.Close()
		return fmt.Errorf("no watchable application directories")
	}

	w.pruneTicker = time.NewTicker(pruneInterval)

	w.wg.Add(2)
	go w.runEventLoop()
	go w.runPruneLoop()

	return nil
}

// runEventLoop debounces descriptor events into rebuilds.
func (w *Watcher) runEventLoop() {
	defer w.wg.Done()

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isDescriptorEvent(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-pending:
			timer = nil
			pending = nil
			if _, err := w.core.Rebuild(); err != nil {
				fmt.Fprintf(os.Stderr, "watcher: rebuild error: %v\n", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watcher: fsnotify error: %v\n", err)

		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// runPruneLoop drops expired launch events on a slow ticker.
func (w *Watcher) runPruneLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.pruneTicker.C:
			n, err := w.core.PruneExpired()
			if err != nil {
				fmt.Fprintf(os.Stderr, "watcher: prune error: %v\n", err)
			} else if n > 0 {
				fmt.Fprintf(os.Stderr, "watcher: pruned %d expired launch events\n", n)
			}
		case <-w.stopCh:
			return
		}
	}
}

// Stop halts the watcher and waits for in-flight work to finish.
func (w *Watcher) Stop() error {
	close(w.stopCh)

	if w.pruneTicker != nil {
		w.pruneTicker.Stop()
	}
	if w.fsw != nil {
		w.fsw.Close()
	}

	w.wg.Wait()
	return nil
}

// isDescriptorEvent filters out events for unrelated files (lock files,
// editor temp files) so they cannot trigger rescans.
func isDescriptorEvent(ev fsnotify.Event) bool {
	return strings.HasSuffix(ev.Name, ".desktop")
}
