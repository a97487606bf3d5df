package plugin

import (
	"fmt"
	"sync"

	"github.com/watchgit/fwgp/internal/logger"
)

// Factory constructs a fresh Handler instance for a registered built-in
// plugin spec.
type Factory func() Handler

// registry is the build-time table of built-in plugins, populated by
// Register calls from each built-in plugin's init().
type registry struct {
	mu       sync.RWMutex
	factories map[string]Factory
}

var global = &registry{factories: map[string]Factory{}}

// Register adds a built-in plugin factory under spec ("module:Class").
// Re-registering the same spec overwrites the previous factory and logs a
// warning, mirroring how the pack's plugin registries treat duplicates.
func Register(spec string, factory Factory) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if _, exists := global.factories[spec]; exists {
		logger.Plugin().Warn().Str("spec", spec).Msg("overwriting existing built-in plugin registration")
	}
	global.factories[spec] = factory
}

// Lookup returns the factory registered under spec, if any.
func Lookup(spec string) (Factory, bool) {
	global.mu.RLock()
	defer global.mu.RUnlock()
	f, ok := global.factories[spec]
	return f, ok
}

// ListBuiltin returns every registered built-in spec.
func ListBuiltin() []string {
	global.mu.RLock()
	defer global.mu.RUnlock()
	specs := make([]string, 0, len(global.factories))
	for spec := range global.factories {
		specs = append(specs, spec)
	}
	return specs
}

func errUnknownSpec(spec string) error {
	return fmt.Errorf("plugin: no built-in or discovered plugin registered for spec %q", spec)
}
