package builtinplugins

import (
	"github.com/watchgit/fwgp/internal/events"
	"github.com/watchgit/fwgp/internal/logger"
	"github.com/watchgit/fwgp/internal/plugin"
)

func init() {
	plugin.Register("builtinplugins:LintFormatter", func() plugin.Handler { return &LintFormatter{} })
}

// LintFormatter is advisory-only: it logs a line per detected change and
// never denies anything.
type LintFormatter struct {
	plugin.BasePlugin
}

// OnFileDetected logs the change for an operator watching the log tail.
func (l *LintFormatter) OnFileDetected(evt events.FileChangeEvent) {
	logger.Plugin().Info().
		Str("plugin", "LintFormatter").
		Str("kind", string(evt.Kind)).
		Str("path", evt.Path).
		Msg("lint-formatter observed change")
}
