package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// usageNotes holds hand-written guidance per tool, keyed by tool name.
// Tools without an entry still appear in listings with their
// description and schema.
var usageNotes = map[string]string{
	"browser_navigate": "Always include the protocol in the URL. Use wait_until='networkidle' " +
		"for single-page apps that keep loading after the document is ready.",
	"browser_interact": "Batch related steps into one call (e.g. fill two fields, then click " +
		"submit). The sequence stops at the first failing step, so order steps from least to " +
		"most destructive. Use browser_inspect first when unsure a selector matches.",
	"browser_read": "Prefer this over raw HTML for understanding page content. Scope with a " +
		"selector to cut noise on large pages.",
	"browser_inspect": "Cheap way to verify a selector before clicking or typing. count=0 " +
		"means the selector matched nothing, not an error.",
	"browser_modules": "Load optional modules only when needed and unload them after: every " +
		"active tool costs context on each catalog listing.",
	"browser_tab_close": "Closing the active tab moves the active index to the nearest " +
		"remaining tab; no tab switch is needed afterwards.",
	"browser_export_pdf": "PDF export requires a launched (not attached) browser running " +
		"headless. The output file is validated before the tool reports success.",
	"browser_network_throttle": "Pass zero values to reset a condition; offline=true beats " +
		"any throughput setting.",
}

// DocsTool is the self-describing documentation lookup: its topic list
// is derived from the live catalog, so it always covers exactly the
// tools a client can currently call.
type DocsTool struct {
	registry *Registry
}

// NewDocsTool creates a new docs tool.
func NewDocsTool(registry *Registry) *DocsTool {
	return &DocsTool{registry: registry}
}

// Name returns the tool name.
func (t *DocsTool) Name() string {
	return "browser_docs"
}

// Description returns the tool description.
func (t *DocsTool) Description() string {
	return "Look up detailed usage documentation for any currently available tool. Call without a topic to list all documented topics."
}

// Schema returns the tool's JSON schema.
func (t *DocsTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"topic": map[string]interface{}{
				"type":        "string",
				"description": "Tool name to look up (omit to list all topics)",
			},
		},
		nil,
	)
}

// DocsInput represents the parameters for documentation lookup.
type DocsInput struct {
	Topic string `json:"topic"`
}

// Execute looks up documentation.
func (t *DocsTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input DocsInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}

	if input.Topic == "" {
		return t.listTopics(), nil, nil
	}

	tool, ok := t.registry.Lookup(input.Topic)
	if !ok {
		return "", nil, fmt.Errorf("unknown topic %q; call browser_docs without a topic to list available ones", input.Topic)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n", tool.Name(), tool.Description())

	if note, ok := usageNotes[tool.Name()]; ok {
		fmt.Fprintf(&b, "\nUsage notes: %s\n", note)
	}

	schema, err := json.MarshalIndent(tool.Schema(), "", "  ")
	if err == nil {
		fmt.Fprintf(&b, "\nParameters:\n%s", schema)
	}

	return b.String(), nil, nil
}

func (t *DocsTool) listTopics() string {
	tools := t.registry.Tools()

	names := make([]string, 0, len(tools))
	byName := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name())
		byName[tool.Name()] = tool
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Available topics (%d):\n", len(names))
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %s\n", name, byName[name].Description())
	}
	return b.String()
}
