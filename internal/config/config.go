// Package config loads and saves the pipeline's on-disk configuration
// document and resolves the small set of environment-variable overrides
// the ambient operational surface (status server, plugin search root)
// accepts.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultRemote and DefaultBranch mirror the original tool's defaults.
const (
	DefaultRemote             = "origin"
	DefaultBranch             = "main"
	DefaultPollingIntervalSec = 2.0
	DefaultStatusAddr         = ":8099"
)

// Config is the document persisted at <BaseDir>/data/config.json.
type Config struct {
	BaseDir            string   `json:"base_dir"`
	RepoPath           string   `json:"repo_path"`
	Remote             string   `json:"remote"`
	Branch             string   `json:"branch"`
	PollingIntervalSec float64  `json:"polling_interval_sec"`
	EnabledPlugins     []string `json:"enabled_plugins"`
}

// DefaultEnabledPlugins lists the built-in plugin specs enabled out of the
// box, matching the original tool's DEFAULT_PLUGINS.
func DefaultEnabledPlugins() []string {
	return []string{
		"builtinplugins:CommitMessage",
		"builtinplugins:SecretsScanner",
		"builtinplugins:LintFormatter",
	}
}

// New returns a Config with defaults filled in for everything but
// BaseDir/RepoPath, which the caller must supply.
func New(baseDir, repoPath string) *Config {
	return &Config{
		BaseDir:            baseDir,
		RepoPath:           repoPath,
		Remote:             DefaultRemote,
		Branch:             DefaultBranch,
		PollingIntervalSec: DefaultPollingIntervalSec,
		EnabledPlugins:     DefaultEnabledPlugins(),
	}
}

func path(baseDir string) string {
	return filepath.Join(baseDir, "data", "config.json")
}

// Load reads the configuration document under baseDir. A missing file is
// not an error: the caller gets a fresh default Config back so first-run
// startup never fails on a missing document.
func Load(baseDir, repoPath string) (*Config, error) {
	raw, err := os.ReadFile(path(baseDir))
	if os.IsNotExist(err) {
		return New(baseDir, repoPath), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	cfg := &Config{}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if cfg.Remote == "" {
		cfg.Remote = DefaultRemote
	}
	if cfg.Branch == "" {
		cfg.Branch = DefaultBranch
	}
	if cfg.PollingIntervalSec <= 0 {
		cfg.PollingIntervalSec = DefaultPollingIntervalSec
	}
	return cfg, nil
}

// Save writes the configuration document, creating <BaseDir>/data if
// needed.
func (c *Config) Save() error {
	dir := filepath.Join(c.BaseDir, "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path(c.BaseDir), raw, 0o644); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}

// StatusAddr resolves the status server bind address, honoring the
// FWGP_STATUS_ADDR override. An empty value disables the status server.
func StatusAddr() string {
	if v, ok := os.LookupEnv("FWGP_STATUS_ADDR"); ok {
		return v
	}
	return DefaultStatusAddr
}

// PluginSearchRoot resolves the directory the plugin host scans for
// manifest.json files, honoring the FWGP_PLUGINS_DIR override.
func PluginSearchRoot(baseDir string) string {
	if v := os.Getenv("FWGP_PLUGINS_DIR"); v != "" {
		return v
	}
	return filepath.Join(baseDir, "plugins")
}
