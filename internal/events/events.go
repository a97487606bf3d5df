// Package events defines the value types exchanged across the pipeline's
// component boundaries: file-change notifications, phase requests and the
// decisions plugins return for them, and the hook names plugins implement.
//
// Every type here is a plain value — no behavior, no pointers into mutable
// state — so that a request or decision can be passed to a worker goroutine,
// logged, or broadcast over the status server without synchronization.
package events

import "time"

// ChangeKind describes why a FileChangeEvent was emitted.
type ChangeKind string

const (
	Created  ChangeKind = "created"
	Modified ChangeKind = "modified"
	Deleted  ChangeKind = "deleted"
)

// FileChangeEvent is immutable once emitted by a Watcher.
type FileChangeEvent struct {
	Path       string
	Kind       ChangeKind
	ObservedAt time.Time
	RepoRoot   string
}

// Hook names a plugin extension point. Values are wire-level stable: they
// must match the method names plugins implement exactly as enumerated in
// the plugin contract.
type Hook string

const (
	HookOnFileDetected Hook = "onFileDetected"
	HookBeforeStage    Hook = "beforeStage"
	HookAfterStage     Hook = "afterStage"
	HookBeforeCommit   Hook = "beforeCommit"
	HookAfterCommit    Hook = "afterCommit"
	HookBeforePush     Hook = "beforePush"
	HookAfterPush      Hook = "afterPush"
	HookBeforePull     Hook = "beforePull"
	HookAfterPull      Hook = "afterPull"
	HookOnConflict     Hook = "onConflict"
)

// StageRequest is built once per tick from the non-deleted changes detected
// by the watcher.
type StageRequest struct {
	Paths    []string
	RepoRoot string
	Bag      map[string]any
}

// StageDecision is the aggregated (or per-plugin) answer to a beforeStage call.
type StageDecision struct {
	Allow      bool
	Reasons    []string
	Transforms map[string]any
}

// CommitRequest carries the staged path summary read back from the VCS
// adapter after `add` succeeds.
type CommitRequest struct {
	StagedSummary []string
	RepoRoot      string
	Author        string
}

// CommitDecision is the aggregated (or per-plugin) answer to a beforeCommit call.
type CommitDecision struct {
	Allow           bool
	MessageOverride string
	Sign            bool
}

// PushRequest describes an outgoing push.
type PushRequest struct {
	Remote  string
	Branch  string
	Commits []string
}

// PushDecision is the aggregated (or per-plugin) answer to a beforePush call.
type PushDecision struct {
	Allow bool
	Force bool
}

// PullRequest describes an incoming pull.
type PullRequest struct {
	Remote string
	Branch string
}

// PullDecision is the aggregated (or per-plugin) answer to a beforePull call.
type PullDecision struct {
	Allow    bool
	Strategy string
}

// ConflictInfo lists unmerged paths surfaced by the VCS adapter's best-effort
// conflict probe.
type ConflictInfo struct {
	Files  []string
	Base   string
	Local  string
	Remote string
}

// PullResult reports whether a pull cycle ran this tick. Per spec, Updated
// means "a pull cycle ran", not "new commits were fetched" — see DESIGN.md.
type PullResult struct {
	Updated   bool
	Conflicts []string
}
