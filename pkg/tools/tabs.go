package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/windlass-sh/windlass/pkg/browser"
)

// The tabs module. All four tools treat the connection manager's
// active-page index as the single source of truth; none of them keep
// tab state of their own.

// TabListTool lists open tabs with their indices.
type TabListTool struct {
	conn *browser.Manager
}

// NewTabListTool creates a new tab list tool.
func NewTabListTool(conn *browser.Manager) *TabListTool {
	return &TabListTool{conn: conn}
}

// Name returns the tool name.
func (t *TabListTool) Name() string {
	return "browser_tab_list"
}

// Description returns the tool description.
func (t *TabListTool) Description() string {
	return "List all open browser tabs with their index and URL. The active tab is marked."
}

// Schema returns the tool's JSON schema.
func (t *TabListTool) Schema() map[string]interface{} {
	return BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute lists tabs.
func (t *TabListTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	pages, err := t.conn.Pages()
	if err != nil {
		return "", nil, err
	}
	active := t.conn.ActivePageIndex()

	var b strings.Builder
	fmt.Fprintf(&b, "%d open tab(s):\n", len(pages))
	for i, page := range pages {
		marker := " "
		if i == active {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s [%d] %s\n", marker, i, page.URL())
	}

	return b.String(), map[string]interface{}{"count": len(pages), "active": active}, nil
}

// TabOpenTool opens a new tab and makes it active.
type TabOpenTool struct {
	conn *browser.Manager
}

// NewTabOpenTool creates a new tab open tool.
func NewTabOpenTool(conn *browser.Manager) *TabOpenTool {
	return &TabOpenTool{conn: conn}
}

// Name returns the tool name.
func (t *TabOpenTool) Name() string {
	return "browser_tab_open"
}

// Description returns the tool description.
func (t *TabOpenTool) Description() string {
	return "Open a new browser tab, optionally navigating it to a URL. The new tab becomes the active tab."
}

// Schema returns the tool's JSON schema.
func (t *TabOpenTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "URL to open in the new tab (blank tab when omitted)",
			},
		},
		nil,
	)
}

// TabOpenInput represents the parameters for opening a tab.
type TabOpenInput struct {
	URL string `json:"url"`
}

// Execute opens a tab.
func (t *TabOpenTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input TabOpenInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}

	page, index, err := t.conn.OpenPage()
	if err != nil {
		return "", nil, err
	}

	if input.URL != "" {
		if _, err := page.Raw().Goto(input.URL, playwright.PageGotoOptions{}); err != nil {
			return "", nil, fmt.Errorf("tab opened at index %d but navigation failed: %w", index, err)
		}
	}

	return fmt.Sprintf("Opened tab %d (%s); it is now the active tab.", index, page.URL()),
		map[string]interface{}{"index": index}, nil
}

// TabSwitchTool changes the active tab.
type TabSwitchTool struct {
	conn *browser.Manager
}

// NewTabSwitchTool creates a new tab switch tool.
func NewTabSwitchTool(conn *browser.Manager) *TabSwitchTool {
	return &TabSwitchTool{conn: conn}
}

// Name returns the tool name.
func (t *TabSwitchTool) Name() string {
	return "browser_tab_switch"
}

// Description returns the tool description.
func (t *TabSwitchTool) Description() string {
	return "Switch the active tab by index. All other tools operate on the active tab."
}

// Schema returns the tool's JSON schema.
func (t *TabSwitchTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"index": map[string]interface{}{
				"type":        "number",
				"description": "Index of the tab to activate (see browser_tab_list)",
			},
		},
		[]string{"index"},
	)
}

// TabSwitchInput represents the parameters for switching tabs.
type TabSwitchInput struct {
	Index *int `json:"index"`
}

// Execute switches tabs.
func (t *TabSwitchTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input TabSwitchInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}
	if input.Index == nil {
		return "", nil, fmt.Errorf("index is required")
	}

	if err := t.conn.SetActivePageIndex(*input.Index); err != nil {
		return "", nil, err
	}

	page, err := t.conn.ActivePage()
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Switched to tab %d (%s).", *input.Index, page.URL()), nil, nil
}

// TabCloseTool closes a tab.
type TabCloseTool struct {
	conn *browser.Manager
}

// NewTabCloseTool creates a new tab close tool.
func NewTabCloseTool(conn *browser.Manager) *TabCloseTool {
	return &TabCloseTool{conn: conn}
}

// Name returns the tool name.
func (t *TabCloseTool) Name() string {
	return "browser_tab_close"
}

// Description returns the tool description.
func (t *TabCloseTool) Description() string {
	return "Close the tab at the given index (the active tab when omitted). The active index moves to the nearest remaining tab."
}

// Schema returns the tool's JSON schema.
func (t *TabCloseTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"index": map[string]interface{}{
				"type":        "number",
				"description": "Index of the tab to close (active tab when omitted)",
			},
		},
		nil,
	)
}

// TabCloseInput represents the parameters for closing a tab.
type TabCloseInput struct {
	Index *int `json:"index"`
}

// Execute closes a tab.
func (t *TabCloseTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input TabCloseInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}

	index := t.conn.ActivePageIndex()
	if input.Index != nil {
		index = *input.Index
	}

	if err := t.conn.ClosePage(index); err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("Closed tab %d. The active tab is now %d.", index, t.conn.ActivePageIndex()), nil, nil
}
