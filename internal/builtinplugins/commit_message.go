package builtinplugins

import (
	"fmt"

	"github.com/watchgit/fwgp/internal/events"
	"github.com/watchgit/fwgp/internal/plugin"
)

func init() {
	plugin.Register("builtinplugins:CommitMessage", func() plugin.Handler { return &CommitMessage{} })
}

// CommitMessage generates a conventional commit message summarizing the
// staged files, and denies the commit outright if nothing is staged.
type CommitMessage struct {
	plugin.BasePlugin
}

// BeforeCommit builds "chore(auto): update <first> (+N files)" from the
// staged summary, or denies the commit when the summary is empty.
func (c *CommitMessage) BeforeCommit(req events.CommitRequest) events.CommitDecision {
	if len(req.StagedSummary) == 0 {
		return events.CommitDecision{Allow: false}
	}
	msg := fmt.Sprintf("chore(auto): update %s", req.StagedSummary[0])
	if extra := len(req.StagedSummary) - 1; extra > 0 {
		msg += fmt.Sprintf(" (+%d files)", extra)
	}
	return events.CommitDecision{Allow: true, MessageOverride: msg}
}
