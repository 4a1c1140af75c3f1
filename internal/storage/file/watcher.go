package file

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// WatchEvent reports that a collection file changed on disk
type WatchEvent struct {
	Collection string // e.g. "pc-phrase"
	Path       string // Full path of the changed file
}

// Watcher monitors the store directory for collection file changes
type Watcher struct {
	fsWatcher   *fsnotify.Watcher
	dir         string
	collections map[string]struct{} // only these collections are reported

	Events chan WatchEvent
	Errors chan error
	done   chan struct{}
}

// NewWatcher creates a watcher for the given collections of a store.
// With no collections every *.json file in the directory is reported.
func NewWatcher(s *Store, collections ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Collection files are replaced by rename, so the directory is watched
	// rather than the files themselves.
	if err := fsw.Add(s.Dir()); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsWatcher:   fsw,
		dir:         s.Dir(),
		collections: make(map[string]struct{}, len(collections)),
		Events:      make(chan WatchEvent, 16),
		Errors:      make(chan error, 4),
		done:        make(chan struct{}),
	}
	for _, name := range collections {
		w.collections[name] = struct{}{}
	}

	return w, nil
}

// Start begins watching for file changes
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// watchLoop handles fsnotify events
func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				// Error channel full, drop
			}
		}
	}
}

// handleFSEvent filters an fsnotify event down to collection file changes
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	name, ok := w.collectionFor(event.Name)
	if !ok {
		return
	}

	select {
	case w.Events <- WatchEvent{Collection: name, Path: event.Name}:
	default:
		// A pending event already triggers a reload
	}
}

// collectionFor maps a file path to its collection name
func (w *Watcher) collectionFor(path string) (string, bool) {
	if filepath.Dir(path) != w.dir {
		return "", false
	}
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".json") {
		return "", false
	}
	name := strings.TrimSuffix(base, ".json")
	if len(w.collections) == 0 {
		return name, true
	}
	_, ok := w.collections[name]
	return name, ok
}
