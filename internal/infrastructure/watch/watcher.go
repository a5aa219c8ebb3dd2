// Package watch monitors the routing configuration file and triggers a
// reload when it changes on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/logging"
)

// DefaultDebounce is the window that coalesces bursts of filesystem events
// into a single reload. Editors commonly emit several events per logical
// save.
const DefaultDebounce = time.Second

// ReloadFunc performs the actual reload when the debounce window elapses.
// A returned error is logged; the watcher keeps running either way.
type ReloadFunc func() error

// Watcher observes a single configuration file for modify, create, and
// rename-into-place events and invokes the reload function after a debounce
// window.
//
// The watcher moves through three states: idle, pending (debounce timer
// armed), and reloading. A new event while pending cancels and re-arms the
// timer; a new event while reloading queues one more debounce cycle rather
// than interrupting the in-flight reload. The watcher goroutine is the only
// writer path; it is serialized by construction.
type Watcher struct {
	path     string
	debounce time.Duration
	reload   ReloadFunc
	logger   *logging.Logger

	fsWatcher *fsnotify.Watcher

	mu        sync.Mutex
	timer     *time.Timer
	reloading bool
	queued    bool
	closed    bool

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Watcher for the given configuration file path.
// The file's parent directory is watched so that rename-into-place saves
// (write to temp file, rename over target) are observed; events for other
// paths in the directory are ignored.
func New(path string, debounce time.Duration, reload ReloadFunc, logger *logging.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("watch path is empty")
	}
	if reload == nil {
		return nil, fmt.Errorf("reload function is required")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.Discard()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		path:      filepath.Clean(path),
		debounce:  debounce,
		reload:    reload,
		logger:    logger,
		fsWatcher: fsWatcher,
		done:      make(chan struct{}),
	}, nil
}

// Start subscribes to filesystem events and begins processing them.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.wg.Add(1)
	go w.processEvents()

	w.logger.Info("configuration watcher started", "path", w.path, "debounce", w.debounce.String())
	return nil
}

// Stop cancels any pending debounce timer and detaches the filesystem
// subscription. Safe to call multiple times. An in-flight reload runs to
// completion; Stop does not wait for it beyond the event loop shutdown.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.queued = false
	w.mu.Unlock()

	close(w.done)
	err := w.fsWatcher.Close()
	w.wg.Wait()

	w.logger.Info("configuration watcher stopped", "path", w.path)
	return err
}

// processEvents reads fsnotify events, filters them to the watched path, and
// schedules debounced reloads.
func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.schedule()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("filesystem watch error", "error", err.Error())
		}
	}
}

// relevant reports whether the event is a content change of the watched
// file. Directory-level events and events for sibling paths are ignored.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// schedule arms the debounce timer, cancelling and re-arming it if one is
// already pending. An event arriving during a reload queues exactly one more
// cycle.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.reloading {
		w.queued = true
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

// fire runs one reload cycle when the debounce window elapses.
func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.reloading = true
	w.mu.Unlock()

	start := time.Now()
	if err := w.reload(); err != nil {
		logging.LogReloadFailed(w.logger, w.path, err)
	} else {
		w.logger.Debug("reload completed", "path", w.path, "duration_ms", time.Since(start).Milliseconds())
	}

	w.mu.Lock()
	w.reloading = false
	if w.queued && !w.closed {
		w.queued = false
		w.timer = time.AfterFunc(w.debounce, w.fire)
	}
	w.mu.Unlock()
}
