package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/watchgit/fwgp/internal/events"
)

func TestInitialScanIsQuiet(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewPollingWatcher(root, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	changes, err := w.PollChanges()
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected no changes reported for files present at construction, got %d", len(changes))
	}
}

func TestDetectsCreatedModifiedDeleted(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing.txt")
	if err := os.WriteFile(existing, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	debounce := 20 * time.Millisecond
	w, err := NewPollingWatcher(root, debounce)
	if err != nil {
		t.Fatal(err)
	}

	created := filepath.Join(root, "new.txt")
	if err := os.WriteFile(created, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(debounce * 2)
	if err := os.WriteFile(existing, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(created); err != nil {
		t.Fatal(err)
	}

	changes, err := w.PollChanges()
	if err != nil {
		t.Fatal(err)
	}

	var sawModified, sawDeleted bool
	for _, c := range changes {
		switch {
		case c.Path == existing && c.Kind == events.Modified:
			sawModified = true
		case c.Path == created && c.Kind == events.Deleted:
			sawDeleted = true
		}
	}
	if !sawModified {
		t.Error("expected existing.txt to be reported modified")
	}
	if !sawDeleted {
		t.Error("expected new.txt to be reported deleted")
	}
}

func TestGitDirectoryExcluded(t *testing.T) {
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/main"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewPollingWatcher(root, time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if _, exists := w.snapshot[filepath.Join(gitDir, "HEAD")]; exists {
		t.Fatal(".git contents must never appear in the watcher snapshot")
	}
}
