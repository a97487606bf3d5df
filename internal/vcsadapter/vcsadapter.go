// Package vcsadapter is a narrow synchronous facade over an external git
// binary. It never shells out through /bin/sh, always pins the working
// directory to the repo root, and always applies a per-operation deadline.
package vcsadapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Error wraps a failed git invocation with the arguments that produced it.
type Error struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.Args, " "), e.Err, strings.TrimSpace(e.Stderr))
}

func (e *Error) Unwrap() error { return e.Err }

const (
	shortTimeout = 15 * time.Second
	pushTimeout  = 60 * time.Second
	pullTimeout  = 120 * time.Second
)

// Adapter binds every operation to a single repository root.
type Adapter struct {
	RepoPath string
}

// New returns an Adapter rooted at repoPath.
func New(repoPath string) *Adapter {
	return &Adapter{RepoPath: repoPath}
}

func (a *Adapter) run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "git", args...)
	cmd.Dir = a.RepoPath
	cmd.Env = []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
		"GIT_TERMINAL_PROMPT=0",
	}
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return stdout.String(), &Error{Args: args, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

// IsRepo reports whether RepoPath contains a .git directory.
func (a *Adapter) IsRepo() bool {
	info, err := os.Stat(filepath.Join(a.RepoPath, ".git"))
	return err == nil && info.IsDir()
}

// InitRepo runs `git init` if RepoPath is not already a repository.
func (a *Adapter) InitRepo(ctx context.Context) error {
	if a.IsRepo() {
		return nil
	}
	_, err := a.run(ctx, shortTimeout, "init")
	return err
}

// SetRemote points the named remote at url, adding it if absent and
// tolerating "already exists" from a prior add.
func (a *Adapter) SetRemote(ctx context.Context, name, url string) error {
	if _, err := a.run(ctx, shortTimeout, "remote", "set-url", name, url); err == nil {
		return nil
	}
	_, err := a.run(ctx, shortTimeout, "remote", "add", name, url)
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return nil
	}
	return err
}

// GetBranch returns the current branch name.
func (a *Adapter) GetBranch(ctx context.Context) (string, error) {
	out, err := a.run(ctx, shortTimeout, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CheckoutBranch switches to branch, creating it first if create is true.
func (a *Adapter) CheckoutBranch(ctx context.Context, branch string, create bool) error {
	args := []string{"checkout"}
	if create {
		args = append(args, "-b")
	}
	args = append(args, branch)
	_, err := a.run(ctx, shortTimeout, args...)
	return err
}

// Add stages paths. An empty slice is a no-op, never a git invocation.
func (a *Adapter) Add(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add", "--"}, paths...)
	_, err := a.run(ctx, shortTimeout, args...)
	return err
}

// StagedSummary lists the paths currently staged for commit.
func (a *Adapter) StagedSummary(ctx context.Context) ([]string, error) {
	out, err := a.run(ctx, shortTimeout, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// ErrNothingToCommit is returned by Commit when git reports an empty
// staging area; callers treat this as a tolerated no-op, not a failure.
var ErrNothingToCommit = errors.New("vcsadapter: nothing to commit")

// Commit creates a commit with message, optionally GPG-signed, and returns
// the resulting commit SHA. If nothing was staged, it returns
// ErrNothingToCommit rather than a generic git error.
func (a *Adapter) Commit(ctx context.Context, message string, sign bool) (string, error) {
	args := []string{"commit", "-m", message}
	if sign {
		args = append(args, "-S")
	}
	out, err := a.run(ctx, shortTimeout, args...)
	if err != nil {
		combined := out
		var gitErr *Error
		if errors.As(err, &gitErr) {
			combined += gitErr.Stderr
		}
		if strings.Contains(strings.ToLower(combined), "nothing to commit") {
			return "", ErrNothingToCommit
		}
		return "", err
	}
	sha, err := a.run(ctx, shortTimeout, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(sha), nil
}

// Push pushes branch to remote. force uses --force-with-lease, never a bare
// --force, so a push can never blindly clobber history it hasn't seen.
func (a *Adapter) Push(ctx context.Context, remote, branch string, force bool) error {
	args := []string{"push"}
	if force {
		args = append(args, "--force-with-lease")
	}
	args = append(args, remote, branch)
	_, err := a.run(ctx, pushTimeout, args...)
	return err
}

// Pull fetches and merges branch from remote.
func (a *Adapter) Pull(ctx context.Context, remote, branch string) error {
	_, err := a.run(ctx, pullTimeout, "pull", remote, branch)
	return err
}

// ListConflicts returns unmerged paths, or an empty slice if the probe
// itself fails (best-effort, never propagated as an error).
func (a *Adapter) ListConflicts(ctx context.Context) []string {
	out, err := a.run(ctx, shortTimeout, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil
	}
	return splitLines(out)
}

func splitLines(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
