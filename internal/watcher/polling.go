package watcher

import (
	"sync"
	"time"

	"github.com/watchgit/fwgp/internal/events"
)

// PollingWatcher detects changes by comparing directory-walk snapshots
// across calls to PollChanges. A file is only reported Modified once its
// observed mtime delta exceeds the debounce window, so editors that write
// a file several times in quick succession produce one event, not several.
type PollingWatcher struct {
	root    string
	debounce time.Duration

	mu       sync.Mutex
	snapshot map[string]time.Time
}

// NewPollingWatcher performs a quiet initial scan (no events emitted for
// files already present) and returns ready to report subsequent changes.
func NewPollingWatcher(root string, debounce time.Duration) (*PollingWatcher, error) {
	snap, err := walkFiles(root)
	if err != nil {
		return nil, err
	}
	return &PollingWatcher{root: root, debounce: debounce, snapshot: snap}, nil
}

// PollChanges diffs the current tree against the last snapshot.
func (p *PollingWatcher) PollChanges() ([]events.FileChangeEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, err := walkFiles(p.root)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var changes []events.FileChangeEvent

	for path, mtime := range current {
		prev, existed := p.snapshot[path]
		switch {
		case !existed:
			changes = append(changes, events.FileChangeEvent{
				Path: path, Kind: events.Created, ObservedAt: now, RepoRoot: p.root,
			})
		case mtime.Sub(prev) >= p.debounce || prev.Sub(mtime) >= p.debounce:
			changes = append(changes, events.FileChangeEvent{
				Path: path, Kind: events.Modified, ObservedAt: now, RepoRoot: p.root,
			})
		}
	}
	for path := range p.snapshot {
		if _, stillExists := current[path]; !stillExists {
			changes = append(changes, events.FileChangeEvent{
				Path: path, Kind: events.Deleted, ObservedAt: now, RepoRoot: p.root,
			})
		}
	}

	p.snapshot = current
	return changes, nil
}

// Close is a no-op for PollingWatcher; it holds no OS resources.
func (p *PollingWatcher) Close() error { return nil }
