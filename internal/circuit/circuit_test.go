package circuit

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRecordFailureDisablesAtThreshold(t *testing.T) {
	dir := t.TempDir()
	store := Open(dir)

	spec := "builtinplugins:CommitMessage"
	for i := 0; i < FailureThreshold-1; i++ {
		store.RecordFailure(spec)
		if store.IsDisabled(spec) {
			t.Fatalf("plugin disabled after only %d failures", i+1)
		}
	}
	store.RecordFailure(spec)
	if !store.IsDisabled(spec) {
		t.Fatalf("plugin should be disabled after %d failures", FailureThreshold)
	}
}

func TestResetClearsDisabled(t *testing.T) {
	dir := t.TempDir()
	store := Open(dir)
	spec := "builtinplugins:SecretsScanner"

	for i := 0; i < FailureThreshold; i++ {
		store.RecordFailure(spec)
	}
	if !store.IsDisabled(spec) {
		t.Fatal("expected plugin to be disabled before reset")
	}
	store.Reset(spec)
	if store.IsDisabled(spec) {
		t.Fatal("expected plugin to be enabled after reset")
	}
}

func TestOpenSurvivesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data", "state.json"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := Open(dir)
	if store.IsDisabled("anything") {
		t.Fatal("corrupt state file should yield an empty store, not a disabled plugin")
	}
}

func TestSavePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	spec := "builtinplugins:Hello"

	store := Open(dir)
	store.RecordFailure(spec)
	store.RecordFailure(spec)

	reopened := Open(dir)
	st := reopened.Get(spec)
	if st.Failures != 2 {
		t.Fatalf("expected 2 failures to survive reopen, got %d", st.Failures)
	}
}
