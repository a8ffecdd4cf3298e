package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/windlass-sh/windlass/pkg/browser"
)

// NavigateTool navigates the active tab to a URL.
type NavigateTool struct {
	conn *browser.Manager
}

// NewNavigateTool creates a new navigate tool.
func NewNavigateTool(conn *browser.Manager) *NavigateTool {
	return &NavigateTool{conn: conn}
}

// Name returns the tool name.
func (t *NavigateTool) Name() string {
	return "browser_navigate"
}

// Description returns the tool description.
func (t *NavigateTool) Description() string {
	return "Navigate the active browser tab to a URL and wait for the page to load. Connects to or launches a browser automatically if none is available yet."
}

// Schema returns the tool's JSON schema.
func (t *NavigateTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL to navigate to (must include protocol, e.g., https://example.com)",
			},
			"wait_until": map[string]interface{}{
				"type":        "string",
				"description": "When to consider navigation complete: 'load' (default), 'domcontentloaded', or 'networkidle'",
			},
			"timeout_ms": map[string]interface{}{
				"type":        "number",
				"description": "Navigation timeout in milliseconds (driver default when omitted)",
			},
		},
		[]string{"url"},
	)
}

// NavigateInput represents the parameters for navigation.
type NavigateInput struct {
	URL       string  `json:"url"`
	WaitUntil string  `json:"wait_until"`
	TimeoutMs float64 `json:"timeout_ms"`
}

// Execute navigates to a URL.
func (t *NavigateTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input NavigateInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}

	if input.URL == "" {
		return "", nil, fmt.Errorf("URL is required")
	}
	if input.WaitUntil == "" {
		input.WaitUntil = "load"
	}

	validWaitStates := map[string]bool{
		"load":             true,
		"domcontentloaded": true,
		"networkidle":      true,
	}
	if !validWaitStates[input.WaitUntil] {
		return "", nil, fmt.Errorf("invalid wait_until value: %s (must be 'load', 'domcontentloaded', or 'networkidle')", input.WaitUntil)
	}

	page, err := t.conn.ActivePage()
	if err != nil {
		return "", nil, err
	}

	waitUntil := playwright.WaitUntilState(input.WaitUntil)
	opts := playwright.PageGotoOptions{WaitUntil: &waitUntil}
	if input.TimeoutMs > 0 {
		opts.Timeout = playwright.Float(input.TimeoutMs)
	}

	if _, err := page.Raw().Goto(input.URL, opts); err != nil {
		return "", nil, fmt.Errorf("navigation failed: %w", err)
	}

	title, err := page.Raw().Title()
	if err != nil {
		title = "Unknown"
	}

	result := fmt.Sprintf(`Navigation successful

Page Details:
- URL: %s
- Title: %s
- Tab: %d

The page has loaded and is ready for interaction.`,
		page.URL(),
		title,
		t.conn.ActivePageIndex(),
	)

	return result, nil, nil
}
