package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(contents), 0o644))
}

func TestValidateManifestTreeAcceptsComplete(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "hello"), `{"name":"hello","module":"builtinplugins","class":"Hello","version":"0.1.0"}`)

	issues, err := ValidateManifestTree(root)
	require.NoError(t, err)
	require.Empty(t, issues)
}

func TestValidateManifestTreeFlagsMissingField(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "broken"), `{"name":"broken","module":"builtinplugins","version":"0.1.0"}`)

	issues, err := ValidateManifestTree(root)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Contains(t, issues[0].Reason, "class")
}

func TestValidateManifestTreeFlagsInvalidJSON(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, filepath.Join(root, "bad"), `not json at all`)

	issues, err := ValidateManifestTree(root)
	require.NoError(t, err)
	require.Len(t, issues, 1)
}

func TestManifestSpecFormat(t *testing.T) {
	m := Manifest{Name: "hello", Module: "builtinplugins", Class: "Hello", Version: "0.1.0"}
	if m.Spec() != "builtinplugins:Hello" {
		t.Fatalf("unexpected spec: %s", m.Spec())
	}
}
