package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/watchgit/fwgp/internal/events"
)

// FSNotifyWatcher subscribes to OS filesystem events across the repo tree,
// buffering them until PollChanges drains the buffer. Directories and any
// path under .git are ignored.
type FSNotifyWatcher struct {
	root    string
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	buffer []events.FileChangeEvent
	done   chan struct{}
}

// NewFSNotifyWatcher walks root once, subscribing every directory (fsnotify
// is not recursive), and starts the background drain loop.
func NewFSNotifyWatcher(root string) (*FSNotifyWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FSNotifyWatcher{root: root, watcher: fw, done: make(chan struct{})}
	if err := w.addDirs(root); err != nil {
		fw.Close()
		return nil, err
	}
	go w.loop()
	return w, nil
}

func (w *FSNotifyWatcher) addDirs(root string) error {
	snap, err := walkFiles(root)
	if err != nil {
		return err
	}
	dirs := map[string]struct{}{root: {}}
	for path := range snap {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if isGitPath(root, dir) {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	return nil
}

func (w *FSNotifyWatcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if isGitPath(w.root, ev.Name) {
				continue
			}
			kind, ok := classify(ev.Op)
			if !ok {
				continue
			}
			w.mu.Lock()
			w.buffer = append(w.buffer, events.FileChangeEvent{
				Path: ev.Name, Kind: kind, ObservedAt: time.Now(), RepoRoot: w.root,
			})
			w.mu.Unlock()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

func classify(op fsnotify.Op) (events.ChangeKind, bool) {
	switch {
	case op&fsnotify.Create != 0:
		return events.Created, true
	case op&fsnotify.Write != 0:
		return events.Modified, true
	case op&fsnotify.Remove != 0, op&fsnotify.Rename != 0:
		return events.Deleted, true
	default:
		return "", false
	}
}

// PollChanges drains and clears the event buffer accumulated since the
// last call.
func (w *FSNotifyWatcher) PollChanges() ([]events.FileChangeEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.buffer
	w.buffer = nil
	return out, nil
}

// Close stops the background loop and releases the underlying OS watcher.
func (w *FSNotifyWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
