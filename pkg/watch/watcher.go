// Package watch reports changes to a single file, such as profiles.json edited by hand
// or by another command while a headless broadcast runs.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/small-frappuccino/richpresence/pkg/log"
)

// DefaultDebounce coalesces the burst of events an editor or atomic save produces.
const DefaultDebounce = 100 * time.Millisecond

// Event is a debounced change of the watched file.
type Event struct {
	Path    string
	Op      fsnotify.Op
	Removed bool
}

// Watcher watches one file through its parent directory, so the file may be
// created, replaced by rename or removed without losing the watch.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration

	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once

	debounceMu sync.Mutex
	timer      *time.Timer
	pendingOp  fsnotify.Op
}

// New creates a watcher for path. Call Start to begin delivering events.
func New(path string, debounce time.Duration) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("watch path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher:  fsWatcher,
		path:       filepath.Clean(abs),
		debounce:   debounce,
		eventsChan: make(chan Event, 1),
		done:       make(chan struct{}),
	}, nil
}

// Events returns the channel for receiving events. Events not yet received are
// coalesced into the pending one.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Path is the watched file.
func (w *Watcher) Path() string { return w.path }

// Start starts the watcher.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	go w.processEvents()
	log.ApplicationLogger().Info("Watching profiles file", "path", w.path)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()
		w.debounceMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorLoggerRaw().Warn("Watcher error", "err", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	// Atomic saves show up as Create or Rename on the target.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}
	log.ApplicationLogger().Debug("fsnotify", "op", event.Op.String(), "path", event.Name)

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	w.pendingOp |= event.Op
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.debounceMu.Lock()
	op := w.pendingOp
	w.pendingOp = 0
	w.timer = nil
	w.debounceMu.Unlock()

	ev := Event{Path: w.path, Op: op, Removed: !exists(w.path)}
	select {
	case <-w.done:
		return
	default:
	}
	select {
	case w.eventsChan <- ev:
	default:
		// A change is already pending; the receiver will reread the file anyway.
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
