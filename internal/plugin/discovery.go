package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"plugin"

	"github.com/watchgit/fwgp/internal/logger"
)

// Host resolves configured plugin specs against the built-in registry
// first, then against manifests discovered under a search root. Dynamic
// (.so) plugins are loaded lazily and cached.
type Host struct {
	searchRoot string
	manifests  map[string]Manifest // spec -> manifest
	dynamic    map[string]*plugin.Plugin
}

// NewHost scans searchRoot for manifest.json files without loading any
// plugin code yet. A missing search root is not an error: it simply yields
// no discovered plugins, leaving only built-ins available.
func NewHost(searchRoot string) (*Host, error) {
	h := &Host{
		searchRoot: searchRoot,
		manifests:  map[string]Manifest{},
		dynamic:    map[string]*plugin.Plugin{},
	}
	if err := h.scan(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return h, nil
}

func (h *Host) scan() error {
	return filepath.WalkDir(h.searchRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == h.searchRoot {
				return err
			}
			return nil
		}
		if d.IsDir() || d.Name() != "manifest.json" {
			return nil
		}
		m, mErr := loadManifest(path)
		if mErr != nil {
			logger.Plugin().Warn().Str("path", path).Err(mErr).Msg("skipping invalid plugin manifest")
			return nil
		}
		h.manifests[m.Spec()] = m
		return nil
	})
}

func loadManifest(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Manifest{}, err
	}
	if m.Name == "" || m.Module == "" || m.Class == "" || m.Version == "" {
		return Manifest{}, fmt.Errorf("plugin: manifest %s missing a required field (name, module, class, version)", path)
	}
	return m, nil
}

// Resolve returns a running Handler for spec, checking the built-in
// registry first and falling back to a discovered dynamic plugin.
func (h *Host) Resolve(spec string) (Handler, error) {
	if factory, ok := Lookup(spec); ok {
		return factory(), nil
	}
	m, ok := h.manifests[spec]
	if !ok {
		return nil, errUnknownSpec(spec)
	}
	return h.loadDynamic(m)
}

func (h *Host) loadDynamic(m Manifest) (Handler, error) {
	p, ok := h.dynamic[m.Spec()]
	if !ok {
		so, err := h.findPluginFile(m)
		if err != nil {
			return nil, err
		}
		p, err = plugin.Open(so)
		if err != nil {
			return nil, fmt.Errorf("plugin: open %s: %w", so, err)
		}
		h.dynamic[m.Spec()] = p
	}
	sym, err := p.Lookup("NewPlugin")
	if err != nil {
		return nil, fmt.Errorf("plugin: %s missing NewPlugin symbol: %w", m.Spec(), err)
	}
	ctor, ok := sym.(func() Handler)
	if !ok {
		return nil, fmt.Errorf("plugin: %s NewPlugin has the wrong signature", m.Spec())
	}
	return ctor(), nil
}

func (h *Host) findPluginFile(m Manifest) (string, error) {
	dir := filepath.Dir(filepath.Join(h.searchRoot, m.Name, "manifest.json"))
	candidates := []string{
		filepath.Join(h.searchRoot, m.Name, m.Name+".so"),
		filepath.Join(h.searchRoot, m.Name+".so"),
		filepath.Join(dir, m.Name+"_plugin.so"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("plugin: no .so found for %s under %s", m.Spec(), h.searchRoot)
}

// ListDiscovered returns every spec found via manifest scanning (not
// necessarily loaded yet).
func (h *Host) ListDiscovered() []string {
	specs := make([]string, 0, len(h.manifests))
	for spec := range h.manifests {
		specs = append(specs, spec)
	}
	return specs
}
