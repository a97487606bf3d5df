// Package builtinplugins provides the small set of reference plugins
// shipped with the pipeline: a smoke-test logger, a secrets scanner, a
// commit-message generator, and an advisory lint notifier.
package builtinplugins

import (
	"github.com/watchgit/fwgp/internal/events"
	"github.com/watchgit/fwgp/internal/logger"
	"github.com/watchgit/fwgp/internal/plugin"
)

func init() {
	plugin.Register("builtinplugins:Hello", func() plugin.Handler { return &Hello{} })
}

// Hello logs every detected change. It exists as a minimal, always-safe
// plugin to exercise the dispatch path end to end.
type Hello struct {
	plugin.BasePlugin
}

// OnFileDetected logs the change kind and path.
func (h *Hello) OnFileDetected(evt events.FileChangeEvent) {
	logger.Plugin().Info().
		Str("plugin", "Hello").
		Str("kind", string(evt.Kind)).
		Str("path", evt.Path).
		Msg("file detected")
}
