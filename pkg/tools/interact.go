package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/windlass-sh/windlass/pkg/browser"
)

// InteractTool is the single generic interaction primitive: it runs a
// sequence of click/type/hover/scroll/focus steps against the active
// tab. One tool instead of five keeps the steady-state catalog small.
type InteractTool struct {
	conn *browser.Manager
}

// NewInteractTool creates a new interact tool.
func NewInteractTool(conn *browser.Manager) *InteractTool {
	return &InteractTool{conn: conn}
}

// Name returns the tool name.
func (t *InteractTool) Name() string {
	return "browser_interact"
}

// Description returns the tool description.
func (t *InteractTool) Description() string {
	return "Perform a sequence of interactions on the active tab. Each step is one of: click, type, hover, scroll, focus. Steps run in order; the first failure stops the sequence."
}

// Schema returns the tool's JSON schema.
func (t *InteractTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"actions": map[string]interface{}{
				"type":        "array",
				"description": "Interaction steps to perform in order",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"action": map[string]interface{}{
							"type":        "string",
							"enum":        []string{"click", "type", "hover", "scroll", "focus"},
							"description": "The interaction to perform",
						},
						"selector": map[string]interface{}{
							"type":        "string",
							"description": "CSS selector of the target element (optional for scroll)",
						},
						"text": map[string]interface{}{
							"type":        "string",
							"description": "Text to enter (type action only)",
						},
						"delta_x": map[string]interface{}{
							"type":        "number",
							"description": "Horizontal scroll distance in pixels (scroll action only)",
						},
						"delta_y": map[string]interface{}{
							"type":        "number",
							"description": "Vertical scroll distance in pixels (scroll action only)",
						},
						"timeout_ms": map[string]interface{}{
							"type":        "number",
							"description": "Per-step timeout in milliseconds",
						},
					},
					"required": []string{"action"},
				},
			},
		},
		[]string{"actions"},
	)
}

// ActionInput is one interaction step.
type ActionInput struct {
	Action    string  `json:"action"`
	Selector  string  `json:"selector"`
	Text      string  `json:"text"`
	DeltaX    float64 `json:"delta_x"`
	DeltaY    float64 `json:"delta_y"`
	TimeoutMs float64 `json:"timeout_ms"`
}

// InteractInput represents the parameters for interaction.
type InteractInput struct {
	Actions []ActionInput `json:"actions"`
}

var validInteractions = map[string]bool{
	"click":  true,
	"type":   true,
	"hover":  true,
	"scroll": true,
	"focus":  true,
}

// Execute runs the interaction sequence.
func (t *InteractTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input InteractInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}

	if len(input.Actions) == 0 {
		return "", nil, fmt.Errorf("at least one action is required")
	}

	// Validate the whole sequence before touching the browser so a bad
	// step never leaves the page half-modified.
	for i, a := range input.Actions {
		if !validInteractions[a.Action] {
			return "", nil, fmt.Errorf("step %d: invalid action %q (must be click, type, hover, scroll, or focus)", i+1, a.Action)
		}
		if a.Selector == "" && a.Action != "scroll" {
			return "", nil, fmt.Errorf("step %d: selector is required for %s", i+1, a.Action)
		}
	}

	page, err := t.conn.ActivePage()
	if err != nil {
		return "", nil, err
	}
	raw := page.Raw()

	var done []string
	for i, a := range input.Actions {
		if err := t.perform(raw, a); err != nil {
			return "", nil, fmt.Errorf("step %d (%s) failed after %d successful steps: %w", i+1, a.Action, len(done), err)
		}
		done = append(done, describeAction(a))
	}

	result := fmt.Sprintf("Performed %d interaction(s) on %s:\n- %s",
		len(done), page.URL(), strings.Join(done, "\n- "))
	return result, nil, nil
}

func (t *InteractTool) perform(raw playwright.Page, a ActionInput) error {
	switch a.Action {
	case "click":
		opts := playwright.PageClickOptions{}
		if a.TimeoutMs > 0 {
			opts.Timeout = playwright.Float(a.TimeoutMs)
		}
		return raw.Click(a.Selector, opts)
	case "type":
		opts := playwright.PageFillOptions{}
		if a.TimeoutMs > 0 {
			opts.Timeout = playwright.Float(a.TimeoutMs)
		}
		return raw.Fill(a.Selector, a.Text, opts)
	case "hover":
		opts := playwright.PageHoverOptions{}
		if a.TimeoutMs > 0 {
			opts.Timeout = playwright.Float(a.TimeoutMs)
		}
		return raw.Hover(a.Selector, opts)
	case "focus":
		return raw.Focus(a.Selector)
	case "scroll":
		if a.Selector != "" {
			// Position over the element first so the wheel event lands on it
			if err := raw.Hover(a.Selector); err != nil {
				return err
			}
		}
		return raw.Mouse().Wheel(a.DeltaX, a.DeltaY)
	default:
		return fmt.Errorf("unsupported action %q", a.Action)
	}
}

func describeAction(a ActionInput) string {
	switch a.Action {
	case "type":
		return fmt.Sprintf("type %q into %s", a.Text, a.Selector)
	case "scroll":
		if a.Selector != "" {
			return fmt.Sprintf("scroll (%g, %g) at %s", a.DeltaX, a.DeltaY, a.Selector)
		}
		return fmt.Sprintf("scroll (%g, %g)", a.DeltaX, a.DeltaY)
	default:
		return fmt.Sprintf("%s %s", a.Action, a.Selector)
	}
}
