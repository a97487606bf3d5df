// Package plugin defines the extension contract pipeline plugins implement,
// a base type supplying no-op defaults, and the manifest/spec types used to
// resolve a configured plugin name to a running instance.
package plugin

import "github.com/watchgit/fwgp/internal/events"

// Handler is the full set of hooks a plugin may implement. Embedding
// BasePlugin satisfies this interface with no-op defaults, so a concrete
// plugin only needs to override the hooks it cares about.
type Handler interface {
	OnFileDetected(evt events.FileChangeEvent)
	BeforeStage(req events.StageRequest) events.StageDecision
	AfterStage(req events.StageRequest, decision events.StageDecision)
	BeforeCommit(req events.CommitRequest) events.CommitDecision
	AfterCommit(req events.CommitRequest, sha string)
	BeforePush(req events.PushRequest) events.PushDecision
	AfterPush(req events.PushRequest, pushed bool)
	BeforePull(req events.PullRequest) events.PullDecision
	AfterPull(result events.PullResult)
	OnConflict(info events.ConflictInfo)
}

// BasePlugin supplies permissive no-op defaults for every hook. Concrete
// plugins embed it and override only what they need.
type BasePlugin struct {
	Name string
}

func (BasePlugin) OnFileDetected(events.FileChangeEvent) {}

func (BasePlugin) BeforeStage(events.StageRequest) events.StageDecision {
	return events.StageDecision{Allow: true}
}

func (BasePlugin) AfterStage(events.StageRequest, events.StageDecision) {}

func (BasePlugin) BeforeCommit(events.CommitRequest) events.CommitDecision {
	return events.CommitDecision{Allow: true}
}

func (BasePlugin) AfterCommit(events.CommitRequest, string) {}

func (BasePlugin) BeforePush(events.PushRequest) events.PushDecision {
	return events.PushDecision{Allow: true}
}

func (BasePlugin) AfterPush(events.PushRequest, bool) {}

func (BasePlugin) BeforePull(events.PullRequest) events.PullDecision {
	return events.PullDecision{Allow: true}
}

func (BasePlugin) AfterPull(events.PullResult) {}

func (BasePlugin) OnConflict(events.ConflictInfo) {}

// Manifest is the required content of a plugin's manifest.json.
type Manifest struct {
	Name    string `json:"name"`
	Module  string `json:"module"`
	Class   string `json:"class"`
	Version string `json:"version"`
}

// Spec returns the "<module>:<class>" string configuration files use to
// name an enabled plugin.
func (m Manifest) Spec() string {
	return m.Module + ":" + m.Class
}

// Record pairs a resolved Handler with the manifest metadata that produced
// it, as tracked by the Host.
type Record struct {
	Spec     string
	Manifest Manifest
	Handler  Handler
}
