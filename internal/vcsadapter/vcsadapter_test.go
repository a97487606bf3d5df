package vcsadapter

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func newTestRepo(t *testing.T) *Adapter {
	t.Helper()
	requireGit(t)
	dir := t.TempDir()
	a := New(dir)
	ctx := context.Background()
	require.NoError(t, a.InitRepo(ctx))
	_, err := exec.Command("git", "-C", dir, "config", "user.email", "fwgp@example.com").CombinedOutput()
	require.NoError(t, err)
	_, err = exec.Command("git", "-C", dir, "config", "user.name", "fwgp").CombinedOutput()
	require.NoError(t, err)
	return a
}

func TestIsRepoAfterInit(t *testing.T) {
	a := newTestRepo(t)
	require.True(t, a.IsRepo())
}

func TestAddCommitStagedSummary(t *testing.T) {
	a := newTestRepo(t)
	ctx := context.Background()

	f := filepath.Join(a.RepoPath, "hello.txt")
	require.NoError(t, os.WriteFile(f, []byte("hi\n"), 0o644))

	require.NoError(t, a.Add(ctx, []string{"hello.txt"}))

	staged, err := a.StagedSummary(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"hello.txt"}, staged)

	sha, err := a.Commit(ctx, "chore(auto): update files", false)
	require.NoError(t, err)
	require.NotEmpty(t, sha)
}

func TestCommitWithNothingStagedReturnsSentinel(t *testing.T) {
	a := newTestRepo(t)
	ctx := context.Background()

	_, err := a.Commit(ctx, "chore(auto): update files", false)
	require.ErrorIs(t, err, ErrNothingToCommit)
}

func TestAddWithNoPathsIsNoop(t *testing.T) {
	a := newTestRepo(t)
	require.NoError(t, a.Add(context.Background(), nil))
}

func TestListConflictsEmptyOnCleanRepo(t *testing.T) {
	a := newTestRepo(t)
	conflicts := a.ListConflicts(context.Background())
	require.Empty(t, conflicts)
}
