package tools

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"

	"github.com/windlass-sh/windlass/pkg/config"
	"github.com/windlass-sh/windlass/pkg/logging"
)

// ErrUnknownModule is returned when a module name is not in the known
// module table. The active set is never mutated on this path.
var ErrUnknownModule = errors.New("unknown module")

// Provider contributes a group of tools to the catalog. A provider is
// either a standalone tool file or the optional part of a core file
// that only activates with its owning module.
type Provider func(deps *Deps) []Tool

// ModuleDef is one entry of the known-module table: a named, optional
// bundle of tool providers toggled at runtime.
type ModuleDef struct {
	Name        string
	Description string
	Providers   []Provider
}

// ModuleStatus is a ListModules row.
type ModuleStatus struct {
	Name        string
	Description string
	Active      bool
}

// Registry maintains the authoritative catalog of invocable tools. The
// derived tool list and handler map are always a pure function of the
// fixed core set plus the active-module set: they are rebuilt in full
// on every change, never patched incrementally.
//
// After every successful load or unload the injected change callback
// fires exactly once, after the rebuild completes and before the
// mutating call returns. The registry knows nothing about transport;
// the protocol layer decides what the callback means.
type Registry struct {
	mu   sync.Mutex
	deps *Deps
	log  *logging.Logger

	known  []ModuleDef
	active map[string]bool

	tools    []Tool
	handlers map[string]Tool

	notify func()

	extDir     string
	extPattern glob.Glob
}

// NewRegistry builds a registry with the fixed core set and the
// built-in known-module table, then performs the initial rebuild.
func NewRegistry(deps *Deps, ext config.ExtensionsConfig, log *logging.Logger) *Registry {
	r := &Registry{
		deps:   deps,
		log:    log,
		known:  builtinModules(),
		active: make(map[string]bool),
		extDir: ext.Dir,
	}

	if ext.Pattern != "" {
		pattern, err := glob.Compile(ext.Pattern)
		if err != nil {
			log.Warnf("invalid extension pattern %q, extension scan disabled: %v", ext.Pattern, err)
		} else {
			r.extPattern = pattern
		}
	}

	r.mu.Lock()
	r.rebuildLocked()
	r.mu.Unlock()
	return r
}

// OnChange registers the callback invoked after every successful
// catalog mutation.
func (r *Registry) OnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notify = fn
}

// Tools returns the current catalog in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Lookup resolves a tool by name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tool, ok := r.handlers[name]
	return tool, ok
}

// ModuleNames returns every known module name, sorted. Used to derive
// the module-management tool's selectable enum so that new table
// entries become selectable without further wiring.
func (r *Registry) ModuleNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.known))
	for _, m := range r.known {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

// ListModules reports every known module with its activation state.
func (r *Registry) ListModules() []ModuleStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ModuleStatus, 0, len(r.known))
	for _, m := range r.known {
		out = append(out, ModuleStatus{
			Name:        m.Name,
			Description: m.Description,
			Active:      r.active[m.Name],
		})
	}
	return out
}

// LoadModule activates a module and rebuilds the catalog. Loading an
// already-active module is informational, not an error; an unknown
// name fails with ErrUnknownModule and mutates nothing.
func (r *Registry) LoadModule(name string) (string, error) {
	r.mu.Lock()

	def := r.lookupModuleLocked(name)
	if def == nil {
		r.mu.Unlock()
		return "", r.unknownModuleError(name)
	}
	if r.active[name] {
		count := len(r.tools)
		r.mu.Unlock()
		return fmt.Sprintf("Module %q is already active. The catalog is unchanged (%d tools).", name, count), nil
	}

	r.active[name] = true
	r.rebuildLocked()
	count := len(r.tools)
	notify := r.notify
	r.mu.Unlock()

	if notify != nil {
		notify()
	}
	return fmt.Sprintf("Module %q loaded. The catalog now has %d tools.", name, count), nil
}

// UnloadModule deactivates a module and rebuilds the catalog. The same
// validation rules as LoadModule apply.
func (r *Registry) UnloadModule(name string) (string, error) {
	r.mu.Lock()

	def := r.lookupModuleLocked(name)
	if def == nil {
		r.mu.Unlock()
		return "", r.unknownModuleError(name)
	}
	if !r.active[name] {
		count := len(r.tools)
		r.mu.Unlock()
		return fmt.Sprintf("Module %q is not active. The catalog is unchanged (%d tools).", name, count), nil
	}

	delete(r.active, name)
	r.rebuildLocked()
	count := len(r.tools)
	notify := r.notify
	r.mu.Unlock()

	if notify != nil {
		notify()
	}
	return fmt.Sprintf("Module %q unloaded. The catalog now has %d tools.", name, count), nil
}

// rebuildLocked derives the catalog from scratch. It is deterministic
// and idempotent: running it any number of times from any prior derived
// state yields the same result for the same active set. Callers must
// hold r.mu.
func (r *Registry) rebuildLocked() {
	r.tools = nil
	r.handlers = make(map[string]Tool)

	// Fixed core set first
	for _, p := range coreProviders() {
		r.registerLocked(p(r.deps)...)
	}

	// The management surface itself, with its module enum derived live
	r.registerLocked(NewModulesTool(r))
	r.registerLocked(NewDocsTool(r))

	// Active modules in table order
	for _, m := range r.known {
		if !r.active[m.Name] {
			continue
		}
		for _, p := range m.Providers {
			r.registerLocked(p(r.deps)...)
		}
	}

	// External extensions last; individual failures never abort the rebuild
	r.loadExtensionsLocked()
}

// registerLocked appends tools, rejecting duplicate names so the
// catalog never holds two tools with one name. Callers must hold r.mu.
func (r *Registry) registerLocked(ts ...Tool) {
	for _, t := range ts {
		if _, exists := r.handlers[t.Name()]; exists {
			r.log.Warnf("skipping duplicate tool %q", t.Name())
			continue
		}
		r.tools = append(r.tools, t)
		r.handlers[t.Name()] = t
	}
}

func (r *Registry) lookupModuleLocked(name string) *ModuleDef {
	for i := range r.known {
		if r.known[i].Name == name {
			return &r.known[i]
		}
	}
	return nil
}

func (r *Registry) unknownModuleError(name string) error {
	names := make([]string, 0, len(r.known))
	for _, m := range r.known {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return fmt.Errorf("%w %q (known modules: %s)", ErrUnknownModule, name, strings.Join(names, ", "))
}
