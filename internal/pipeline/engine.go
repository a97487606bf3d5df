// Package pipeline runs the single-threaded tick loop that strings the
// watcher, the plugin dispatcher, and the VCS adapter together into one
// pre-sync-detect-stage-commit-push cycle per interval.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/watchgit/fwgp/internal/dispatcher"
	"github.com/watchgit/fwgp/internal/events"
	"github.com/watchgit/fwgp/internal/logger"
	"github.com/watchgit/fwgp/internal/vcsadapter"
	"github.com/watchgit/fwgp/internal/watcher"
)

// defaultCommitMessage is used when no plugin supplies a MessageOverride.
const defaultCommitMessage = "chore(auto): update files"

// TickObserver receives a notification for every phase transition in a
// tick; the status server's broadcast hub implements this to feed the live
// event stream. A nil Observer is valid: engines run fine unobserved.
type TickObserver interface {
	OnTickEvent(tickID string, phase string, detail map[string]any)
}

// Engine owns the single pipeline goroutine.
type Engine struct {
	Watcher    watcher.Watcher
	Dispatcher *dispatcher.Dispatcher
	VCS        *vcsadapter.Adapter
	Remote     string
	Branch     string
	Interval   time.Duration
	Observer   TickObserver

	done chan struct{}
}

// New constructs an Engine. Call Start to begin ticking.
func New(w watcher.Watcher, d *dispatcher.Dispatcher, vcs *vcsadapter.Adapter, remote, branch string, interval time.Duration) *Engine {
	return &Engine{
		Watcher:    w,
		Dispatcher: d,
		VCS:        vcs,
		Remote:     remote,
		Branch:     branch,
		Interval:   interval,
		done:       make(chan struct{}),
	}
}

// Start runs ticks on Interval until Stop is called. It blocks the calling
// goroutine; callers typically run it in its own goroutine.
func (e *Engine) Start(ctx context.Context) {
	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

// Stop signals the tick loop to exit after its current tick, if any, is in
// progress.
func (e *Engine) Stop() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}

func (e *Engine) emit(tickID, phase string, detail map[string]any) {
	if e.Observer != nil {
		e.Observer.OnTickEvent(tickID, phase, detail)
	}
}

// tick runs exactly one pre-sync-detect-stage-commit-push cycle. Pre-sync
// (pull, conflict probe, afterPull) runs first and unconditionally, even
// on a tick with no local changes, so remote changes are fetched before
// anything is staged or pushed and conflicts on an otherwise-idle tick are
// still surfaced. Failures in add or commit are tick-terminating (the
// subprocess genuinely failed and there is nothing useful left to do this
// tick); failures in push or pull are best-effort and only logged, since a
// stale remote is expected to heal on the next tick.
func (e *Engine) tick(ctx context.Context) {
	tickID := uuid.New().String()
	log := logger.Pipeline().With().Str("tick", tickID).Logger()
	e.emit(tickID, "tick_started", nil)

	e.runPull(ctx, tickID, &log)

	changes, err := e.Watcher.PollChanges()
	if err != nil {
		log.Error().Err(err).Msg("watcher poll failed")
		return
	}

	var stagePaths []string
	for _, ch := range changes {
		e.Dispatcher.OnFileDetected(ch)
		e.emit(tickID, "change_detected", map[string]any{"path": ch.Path, "kind": string(ch.Kind)})
		if ch.Kind != events.Deleted {
			stagePaths = append(stagePaths, ch.Path)
		}
	}

	if len(stagePaths) == 0 {
		e.emit(tickID, "tick_idle", nil)
		return
	}

	stageReq := events.StageRequest{Paths: stagePaths, RepoRoot: e.VCS.RepoPath}
	stageDec := e.Dispatcher.BeforeStage(stageReq)
	e.emit(tickID, "stage_decision", map[string]any{"allow": stageDec.Allow, "reasons": stageDec.Reasons})
	if !stageDec.Allow {
		e.Dispatcher.AfterStage(stageReq, stageDec)
		return
	}
	if err := e.VCS.Add(ctx, stagePaths); err != nil {
		log.Error().Err(err).Msg("git add failed")
		return
	}
	e.Dispatcher.AfterStage(stageReq, stageDec)

	staged, err := e.VCS.StagedSummary(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reading staged summary failed")
		return
	}

	commitReq := events.CommitRequest{StagedSummary: staged, RepoRoot: e.VCS.RepoPath}
	commitDec := e.Dispatcher.BeforeCommit(commitReq)
	e.emit(tickID, "commit_decision", map[string]any{"allow": commitDec.Allow})
	if commitDec.Allow {
		message := commitDec.MessageOverride
		if message == "" {
			message = defaultCommitMessage
		}
		sha, err := e.VCS.Commit(ctx, message, commitDec.Sign)
		switch {
		case err == nil:
			e.Dispatcher.AfterCommit(commitReq, sha)
			e.emit(tickID, "commit_result", map[string]any{"sha": sha})
		case err == vcsadapter.ErrNothingToCommit:
			e.emit(tickID, "commit_result", map[string]any{"sha": ""})
		default:
			log.Error().Err(err).Msg("git commit failed")
			return
		}
	}

	e.runPush(ctx, tickID, &log)
}

func (e *Engine) runPush(ctx context.Context, tickID string, log *zerolog.Logger) {
	pushReq := events.PushRequest{Remote: e.Remote, Branch: e.Branch}
	pushDec := e.Dispatcher.BeforePush(pushReq)
	pushed := false
	if pushDec.Allow {
		if err := e.VCS.Push(ctx, e.Remote, e.Branch, pushDec.Force); err != nil {
			log.Warn().Err(err).Msg("git push failed, will retry next tick")
		} else {
			pushed = true
		}
	}
	e.Dispatcher.AfterPush(pushReq, pushed)
	e.emit(tickID, "push_result", map[string]any{"pushed": pushed})
}

// runPull is the tick's pre-sync phase: it runs first, before detection,
// staging, or commit, so remote changes are fetched before anything is
// pushed. It also implements two deliberate quirks carried over from the
// original tool rather than "fixed": the conflict probe always runs, even
// when beforePull denied the pull (and even on an otherwise-idle tick), and
// afterPull always reports Updated: true, since "a pull cycle ran this
// tick" is what the field has always meant here, not "new commits were
// fetched".
func (e *Engine) runPull(ctx context.Context, tickID string, log *zerolog.Logger) {
	pullReq := events.PullRequest{Remote: e.Remote, Branch: e.Branch}
	pullDec := e.Dispatcher.BeforePull(pullReq)
	if pullDec.Allow {
		if err := e.VCS.Pull(ctx, e.Remote, e.Branch); err != nil {
			log.Warn().Err(err).Msg("git pull failed, will retry next tick")
		}
	}

	conflicts := e.VCS.ListConflicts(ctx)
	if len(conflicts) > 0 {
		info := events.ConflictInfo{Files: conflicts}
		e.Dispatcher.OnConflict(info)
		e.emit(tickID, "conflict", map[string]any{"files": conflicts})
	}
	e.Dispatcher.AfterPull(events.PullResult{Updated: true, Conflicts: conflicts})
	e.emit(tickID, "pull_result", map[string]any{"conflicts": conflicts})
}
