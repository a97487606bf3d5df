package builtinplugins

import (
	"testing"

	"github.com/watchgit/fwgp/internal/events"
)

func TestCommitMessageDeniesWhenNothingStaged(t *testing.T) {
	c := &CommitMessage{}
	dec := c.BeforeCommit(events.CommitRequest{})
	if dec.Allow {
		t.Fatal("expected deny when staged summary is empty")
	}
}

func TestCommitMessageSingleFile(t *testing.T) {
	c := &CommitMessage{}
	dec := c.BeforeCommit(events.CommitRequest{StagedSummary: []string{"main.go"}})
	if !dec.Allow {
		t.Fatal("expected allow")
	}
	want := "chore(auto): update main.go"
	if dec.MessageOverride != want {
		t.Fatalf("got %q, want %q", dec.MessageOverride, want)
	}
}

func TestCommitMessageMultipleFiles(t *testing.T) {
	c := &CommitMessage{}
	dec := c.BeforeCommit(events.CommitRequest{StagedSummary: []string{"main.go", "util.go", "api.go"}})
	want := "chore(auto): update main.go (+2 files)"
	if dec.MessageOverride != want {
		t.Fatalf("got %q, want %q", dec.MessageOverride, want)
	}
}
