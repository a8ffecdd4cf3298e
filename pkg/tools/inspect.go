package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/windlass-sh/windlass/pkg/browser"
)

// InspectTool reports what a selector matches on the active tab:
// element count, visibility, text, and requested attributes.
type InspectTool struct {
	conn *browser.Manager
}

// NewInspectTool creates a new inspect tool.
func NewInspectTool(conn *browser.Manager) *InspectTool {
	return &InspectTool{conn: conn}
}

// Name returns the tool name.
func (t *InspectTool) Name() string {
	return "browser_inspect"
}

// Description returns the tool description.
func (t *InspectTool) Description() string {
	return "Inspect elements matching a CSS selector on the active tab: how many match, whether the first is visible, its text, and any requested attributes. Use this to verify a selector before interacting with it."
}

// Schema returns the tool's JSON schema.
func (t *InspectTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector to inspect",
			},
			"attributes": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Attribute names to read from the first match",
			},
		},
		[]string{"selector"},
	)
}

// InspectInput represents the parameters for inspection.
type InspectInput struct {
	Selector   string   `json:"selector"`
	Attributes []string `json:"attributes"`
}

// Execute inspects matching elements.
func (t *InspectTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input InspectInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}

	if input.Selector == "" {
		return "", nil, fmt.Errorf("selector is required")
	}

	page, err := t.conn.ActivePage()
	if err != nil {
		return "", nil, err
	}

	elements, err := page.Raw().QuerySelectorAll(input.Selector)
	if err != nil {
		return "", nil, fmt.Errorf("selector query failed: %w", err)
	}

	if len(elements) == 0 {
		return fmt.Sprintf("No elements match %q on %s.", input.Selector, page.URL()),
			map[string]interface{}{"count": 0}, nil
	}

	first := elements[0]

	visible, err := first.IsVisible()
	if err != nil {
		visible = false
	}

	text, err := first.TextContent()
	if err != nil {
		text = ""
	}
	text = strings.TrimSpace(text)
	if len(text) > 200 {
		text = text[:200] + "..."
	}

	attrs := make(map[string]interface{})
	for _, name := range input.Attributes {
		value, err := first.GetAttribute(name)
		if err != nil {
			continue
		}
		attrs[name] = value
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d element(s) match %q on %s.\n", len(elements), input.Selector, page.URL())
	fmt.Fprintf(&b, "First match: visible=%t", visible)
	if text != "" {
		fmt.Fprintf(&b, ", text=%q", text)
	}
	for name, value := range attrs {
		fmt.Fprintf(&b, "\n- %s=%v", name, value)
	}

	meta := map[string]interface{}{
		"count":   len(elements),
		"visible": visible,
	}
	if len(attrs) > 0 {
		meta["attributes"] = attrs
	}
	return b.String(), meta, nil
}
