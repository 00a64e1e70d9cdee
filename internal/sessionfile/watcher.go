package sessionfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"adminconsole/internal/logging"
	"adminconsole/internal/state/session"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the create/write/rename burst of a single save.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads the session file when another process changes it.
type Watcher struct {
	mu       sync.Mutex
	file     *File
	watcher  *fsnotify.Watcher
	onChange func(session.State)
	debounce time.Duration
	pending  bool
	lastAt   time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher creates a watcher for f. onChange runs on the watcher goroutine
// with the freshly loaded state.
func NewWatcher(f *File, onChange func(session.State)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &Watcher{
		file:     f,
		watcher:  fw,
		onChange: onChange,
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce changes the debounce window. Must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounce = d
	w.mu.Unlock()
}

// Start watches the file's directory. The file itself may not exist yet and
// editors replace it by rename, so the directory is the watch target.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	dir := filepath.Dir(w.file.Path())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	logging.Session("watching session file %s", w.file.Path())

	// running is only set once the goroutine that closes doneCh exists.
	w.running = true
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit. It is safe to
// call after a failed Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategorySession).Error("session watcher close: %v", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategorySession).Error("session watcher: %v", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) tick() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t := w.debounce / 3; t > 0 {
		return t
	}
	return 10 * time.Millisecond
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.file.Path()) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	logging.SessionDebug("session file event: %s", event.Op)

	w.mu.Lock()
	w.pending = true
	w.lastAt = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastAt) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	s, err := w.file.Load()
	if err != nil {
		logging.Get(logging.CategorySession).Warn("reload session: %v", err)
		return
	}
	logging.Session("session file changed (authenticated=%t)", s.Authenticated())
	if w.onChange != nil {
		w.onChange(s)
	}
}
