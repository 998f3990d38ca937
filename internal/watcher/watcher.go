// Package watcher observes the daemon's runtime directory so the tray
// reacts to service start/stop promptly instead of waiting for the next
// poll tick.
package watcher

import (
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the kind of daemon state change observed.
type EventType int

// Event types.
const (
	// EventDaemonUp means a file appeared in the run directory (the
	// daemon created its socket).
	EventDaemonUp EventType = iota
	// EventDaemonDown means a file disappeared.
	EventDaemonDown
)

// Event is a debounced daemon run-dir change.
type Event struct {
	Type EventType
	Path string
}

// Watcher watches the daemon run directory.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	runDir     string
	eventsChan chan Event
	done       chan struct{}

	debounceMu sync.Mutex
	debounce   map[string]*time.Timer
}

// New creates a watcher for the given run directory.
func New(runDir string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher:  fsWatcher,
		runDir:     runDir,
		eventsChan: make(chan Event, 16),
		done:       make(chan struct{}),
		debounce:   make(map[string]*time.Timer),
	}, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start begins watching. A missing run directory is not fatal: the
// daemon may simply not be installed yet, and the poll loop still works.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.runDir); err != nil {
		log.Printf("[watcher] cannot watch %s: %v (falling back to polling only)", w.runDir, err)
	} else {
		log.Printf("[watcher] watching %s", w.runDir)
	}
	go w.processEvents()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
	_ = w.fsWatcher.Close()
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
			log.Printf("[watcher] error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	var typ EventType
	switch {
	case event.Op&fsnotify.Create != 0:
		typ = EventDaemonUp
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		typ = EventDaemonDown
	default:
		return
	}

	// The daemon touches several files while starting; debounce so one
	// restart yields one refresh.
	w.debounceEvent(event.Name, func() {
		log.Printf("[watcher] %s: %s", event.Op, event.Name)
		select {
		case w.eventsChan <- Event{Type: typ, Path: event.Name}:
		default:
		}
	})
}

func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(250*time.Millisecond, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}
