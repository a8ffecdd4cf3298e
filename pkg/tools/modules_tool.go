package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ModulesTool is the module-management operation: it lists, loads, and
// unloads optional tool modules at runtime.
type ModulesTool struct {
	registry *Registry
}

// NewModulesTool creates the module-management tool.
func NewModulesTool(registry *Registry) *ModulesTool {
	return &ModulesTool{registry: registry}
}

// Name returns the tool name.
func (t *ModulesTool) Name() string {
	return "browser_modules"
}

// Description returns the tool description.
func (t *ModulesTool) Description() string {
	return "List, load, or unload optional tool modules. Loading a module adds its tools to the catalog immediately; unloading removes them. The catalog change is pushed to the client."
}

// Schema returns the tool's JSON schema. The module enum is derived
// from the known-module table at call time, so newly added modules are
// selectable without touching this tool.
func (t *ModulesTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"action": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"list", "load", "unload"},
				"description": "What to do: 'list' shows all modules, 'load'/'unload' toggle one",
			},
			"module": map[string]interface{}{
				"type":        "string",
				"enum":        t.registry.ModuleNames(),
				"description": "Module to load or unload (required for those actions)",
			},
		},
		[]string{"action"},
	)
}

// ModulesInput represents the parameters for module management.
type ModulesInput struct {
	Action string `json:"action"`
	Module string `json:"module"`
}

// Execute performs the requested module operation.
func (t *ModulesTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input ModulesInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}

	switch input.Action {
	case "list":
		return t.list(), nil, nil
	case "load":
		if input.Module == "" {
			return "", nil, fmt.Errorf("module name is required for load")
		}
		result, err := t.registry.LoadModule(input.Module)
		return result, nil, err
	case "unload":
		if input.Module == "" {
			return "", nil, fmt.Errorf("module name is required for unload")
		}
		result, err := t.registry.UnloadModule(input.Module)
		return result, nil, err
	case "":
		return "", nil, fmt.Errorf("action is required (list, load, or unload)")
	default:
		return "", nil, fmt.Errorf("invalid action: %s (must be 'list', 'load', or 'unload')", input.Action)
	}
}

func (t *ModulesTool) list() string {
	statuses := t.registry.ListModules()

	var b strings.Builder
	b.WriteString("Available modules:\n")
	for _, s := range statuses {
		state := "inactive"
		if s.Active {
			state = "active"
		}
		fmt.Fprintf(&b, "- %s [%s]: %s\n", s.Name, state, s.Description)
	}
	fmt.Fprintf(&b, "\nThe catalog currently holds %d tools.", len(t.registry.Tools()))
	return b.String()
}
