package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestIssue describes one manifest.json that failed validation.
type ManifestIssue struct {
	Path   string
	Reason string
}

// ValidateManifestTree walks root looking for manifest.json files and
// checks each against the required-fields set (name, module, class,
// version). It is the library-function analogue of the original
// pre-commit manifest validator: a report, not an enforcement action.
func ValidateManifestTree(root string) ([]ManifestIssue, error) {
	var issues []ManifestIssue
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() || d.Name() != "manifest.json" {
			return nil
		}
		if reason := validateOne(path); reason != "" {
			issues = append(issues, ManifestIssue{Path: path, Reason: reason})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}

func validateOne(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "unreadable: " + err.Error()
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "invalid JSON: " + err.Error()
	}
	for _, field := range []string{"name", "module", "class", "version"} {
		v, ok := m[field]
		if !ok {
			return "missing required field: " + field
		}
		if s, ok := v.(string); !ok || s == "" {
			return "required field is empty: " + field
		}
	}
	return ""
}
