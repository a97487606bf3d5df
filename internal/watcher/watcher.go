// Package watcher detects file changes under a repository root, either by
// polling stat() diffs or by subscribing to OS filesystem events, behind a
// common Watcher interface.
package watcher

import (
	"os"
	"path/filepath"
	"time"

	"github.com/watchgit/fwgp/internal/events"
	"github.com/watchgit/fwgp/internal/logger"
)

// Watcher detects changes under a repository root since the last call.
type Watcher interface {
	// PollChanges returns the changes observed since the previous call (or
	// since construction, for the first call).
	PollChanges() ([]events.FileChangeEvent, error)
	// Close releases any OS resources held by the watcher.
	Close() error
}

// New selects a watcher implementation for root. When preferOS is true it
// first attempts an FSNotifyWatcher; any construction failure falls back to
// a PollingWatcher rather than failing startup.
func New(root string, preferOS bool) (Watcher, error) {
	if preferOS {
		w, err := NewFSNotifyWatcher(root)
		if err == nil {
			return w, nil
		}
		logger.Watcher().Warn().Err(err).Msg("falling back to polling watcher")
	}
	return NewPollingWatcher(root, 500*time.Millisecond)
}

func isGitPath(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range splitPath(rel) {
		if part == ".git" {
			return true
		}
	}
	return false
}

func splitPath(p string) []string {
	var parts []string
	for {
		dir, file := filepath.Split(p)
		if file != "" {
			parts = append([]string{file}, parts...)
		}
		dir = filepath.Clean(dir)
		if dir == "." || dir == string(filepath.Separator) || dir == p {
			break
		}
		p = dir
	}
	return parts
}

func walkFiles(root string) (map[string]time.Time, error) {
	snapshot := map[string]time.Time{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		snapshot[path] = info.ModTime()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
