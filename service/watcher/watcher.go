// Package watcher monitors the settings file and invokes a callback when it
// changes, so the engine can reload configuration and restart the
// interpreter session when the interpreter path moved.
package watcher

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 300 * time.Millisecond

// ChangeCallback is invoked, debounced, after the watched file changes.
type ChangeCallback func(path string)

// Watcher monitors a single settings file for modification.
type Watcher struct {
	path      string
	callback  ChangeCallback
	fsWatcher *fsnotify.Watcher
	cancel    chan struct{}
	mu        sync.Mutex
	started   bool
}

// New creates a watcher for the given file path.
func New(path string, callback ChangeCallback) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		callback: callback,
		cancel:   make(chan struct{}),
	}
}

// Start begins watching. The parent directory is watched rather than the
// file itself so editors that replace the file on save keep triggering
// events.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	fsW, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsW.Add(filepath.Dir(w.path)); err != nil {
		fsW.Close()
		return err
	}
	w.fsWatcher = fsW
	w.started = true
	go w.watchLoop()
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.started = false
	close(w.cancel)
	w.fsWatcher.Close()
}

// watchLoop processes fsnotify events with debouncing.
func (w *Watcher) watchLoop() {
	var timer *time.Timer

	for {
		select {
		case <-w.cancel:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Debounce: reset timer on each event.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceInterval, func() {
				if w.callback != nil {
					w.callback(w.path)
				}
			})

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("settings watcher error: %v", err)
		}
	}
}
