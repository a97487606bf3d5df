package events

import "testing"

func TestHookConstantsAreDistinct(t *testing.T) {
	hooks := []Hook{
		HookOnFileDetected, HookBeforeStage, HookAfterStage,
		HookBeforeCommit, HookAfterCommit,
		HookBeforePush, HookAfterPush,
		HookBeforePull, HookAfterPull,
		HookOnConflict,
	}
	seen := map[Hook]bool{}
	for _, h := range hooks {
		if seen[h] {
			t.Fatalf("duplicate hook constant: %s", h)
		}
		seen[h] = true
	}
	if len(seen) != 10 {
		t.Fatalf("expected exactly 10 hooks, got %d", len(seen))
	}
}

func TestChangeKindValues(t *testing.T) {
	if Created == Modified || Modified == Deleted || Created == Deleted {
		t.Fatal("ChangeKind values must be distinct")
	}
}
