package builtinplugins

import (
	"os"
	"regexp"

	"github.com/watchgit/fwgp/internal/events"
	"github.com/watchgit/fwgp/internal/plugin"
)

func init() {
	plugin.Register("builtinplugins:SecretsScanner", func() plugin.Handler { return &SecretsScanner{} })
}

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)api[_-]?key\s*[:=]\s*['"][A-Za-z0-9\-_]{16,}['"]`),
	regexp.MustCompile(`(?i)secret\s*[:=]\s*['"][A-Za-z0-9\-_]{16,}['"]`),
}

// SecretsScanner blocks a commit when any staged file's contents match one
// of a small set of secret-shaped patterns (AWS access keys, generic
// api_key=/secret= assignments).
type SecretsScanner struct {
	plugin.BasePlugin
}

// BeforeCommit reads every staged path from the repo root and denies the
// commit if any file trips a pattern. A file that can't be read is
// skipped, not treated as a match.
func (s *SecretsScanner) BeforeCommit(req events.CommitRequest) events.CommitDecision {
	for _, rel := range req.StagedSummary {
		full := req.RepoRoot + string(os.PathSeparator) + rel
		contents, err := os.ReadFile(full)
		if err != nil {
			continue
		}
		for _, pat := range secretPatterns {
			if pat.Match(contents) {
				return events.CommitDecision{Allow: false}
			}
		}
	}
	return events.CommitDecision{Allow: true}
}
