package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
)

// ExtensionSymbol is the versioned entry point every extension artifact
// must export: a func() ([]Tool, error). Bumping the symbol name is the
// compatibility break mechanism; old artifacts simply stop matching.
const ExtensionSymbol = "WindlassToolsV1"

// loadExtensionsLocked scans the configured extension directory and
// merges every loadable provider unit into the catalog. Individual
// failures are logged and skipped: one broken artifact must never take
// the rest of the rebuild down with it. Callers must hold r.mu.
func (r *Registry) loadExtensionsLocked() {
	if r.extDir == "" || r.extPattern == nil {
		return
	}

	entries, err := os.ReadDir(r.extDir)
	if err != nil {
		if !os.IsNotExist(err) {
			r.log.Debugf("extension directory %s unreadable: %v", r.extDir, err)
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !r.extPattern.Match(entry.Name()) {
			continue
		}

		path := filepath.Join(r.extDir, entry.Name())
		loaded, err := loadExtension(path)
		if err != nil {
			r.log.Warnf("skipping extension %s: %v", entry.Name(), err)
			continue
		}

		r.registerLocked(loaded...)
		r.log.Infof("loaded extension %s (%d tools)", entry.Name(), len(loaded))
	}
}

// loadExtension opens one artifact and resolves its provider entry
// point through the plugin loader.
func loadExtension(path string) ([]Tool, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugin: %w", err)
	}

	sym, err := p.Lookup(ExtensionSymbol)
	if err != nil {
		return nil, fmt.Errorf("missing %s symbol: %w", ExtensionSymbol, err)
	}

	factory, ok := sym.(func() ([]Tool, error))
	if !ok {
		return nil, fmt.Errorf("%s has wrong type %T (want func() ([]Tool, error))", ExtensionSymbol, sym)
	}

	loaded, err := factory()
	if err != nil {
		return nil, fmt.Errorf("provider failed: %w", err)
	}
	return loaded, nil
}
