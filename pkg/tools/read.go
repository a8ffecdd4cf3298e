package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/windlass-sh/windlass/pkg/browser"
)

// DefaultReadMaxLength bounds extracted content so a single read never
// floods the caller's context window.
const DefaultReadMaxLength = 20000

// ReadTool extracts the readable text of the active tab. It is the
// mandatory half of this file; ReadHTMLTool below is the optional half
// that only registers while the media module is active.
type ReadTool struct {
	conn *browser.Manager
}

// NewReadTool creates a new read tool.
func NewReadTool(conn *browser.Manager) *ReadTool {
	return &ReadTool{conn: conn}
}

// Name returns the tool name.
func (t *ReadTool) Name() string {
	return "browser_read"
}

// Description returns the tool description.
func (t *ReadTool) Description() string {
	return "Extract the readable text content of the active tab, optionally scoped to a CSS selector. Scripts, styles, and markup noise are stripped."
}

// Schema returns the tool's JSON schema.
func (t *ReadTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector to scope extraction to one element (whole page when omitted)",
			},
			"max_length": map[string]interface{}{
				"type":        "number",
				"description": "Maximum characters to return (default 20000)",
			},
		},
		nil,
	)
}

// ReadInput represents the parameters for content extraction.
type ReadInput struct {
	Selector  string `json:"selector"`
	MaxLength int    `json:"max_length"`
}

// Execute extracts page text.
func (t *ReadTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input ReadInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}
	if input.MaxLength <= 0 {
		input.MaxLength = DefaultReadMaxLength
	}

	page, err := t.conn.ActivePage()
	if err != nil {
		return "", nil, err
	}

	rawHTML, err := pageHTML(page, input.Selector)
	if err != nil {
		return "", nil, err
	}

	text, truncated, err := htmlToText(rawHTML, input.MaxLength)
	if err != nil {
		return "", nil, err
	}

	result := fmt.Sprintf("Content of %s:\n\n%s", page.URL(), text)
	if truncated {
		result += fmt.Sprintf("\n\n[Content truncated at %d characters]", input.MaxLength)
	}
	return result, nil, nil
}

// ReadHTMLTool returns cleaned structural HTML instead of plain text.
// Registered only while the media module is active: raw markup is
// heavyweight output most sessions never need.
type ReadHTMLTool struct {
	conn *browser.Manager
}

// NewReadHTMLTool creates a new raw-HTML read tool.
func NewReadHTMLTool(conn *browser.Manager) *ReadHTMLTool {
	return &ReadHTMLTool{conn: conn}
}

// Name returns the tool name.
func (t *ReadHTMLTool) Name() string {
	return "browser_read_html"
}

// Description returns the tool description.
func (t *ReadHTMLTool) Description() string {
	return "Return the cleaned HTML of the active tab with targeting attributes (id, class, href, aria-label, data-*) preserved. Useful for finding selectors."
}

// Schema returns the tool's JSON schema.
func (t *ReadHTMLTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector to scope extraction to one element (whole page when omitted)",
			},
			"max_length": map[string]interface{}{
				"type":        "number",
				"description": "Maximum characters to return (default 20000)",
			},
		},
		nil,
	)
}

// Execute extracts cleaned HTML.
func (t *ReadHTMLTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input ReadInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}
	if input.MaxLength <= 0 {
		input.MaxLength = DefaultReadMaxLength
	}

	page, err := t.conn.ActivePage()
	if err != nil {
		return "", nil, err
	}

	rawHTML, err := pageHTML(page, input.Selector)
	if err != nil {
		return "", nil, err
	}

	cleaned, truncated, err := cleanHTML(rawHTML, input.MaxLength)
	if err != nil {
		return "", nil, err
	}

	result := fmt.Sprintf("HTML of %s:\n\n%s", page.URL(), cleaned)
	if truncated {
		result += fmt.Sprintf("\n\n[Content truncated at %d characters]", input.MaxLength)
	}
	return result, nil, nil
}

// pageHTML fetches the page's markup, scoped to selector when given.
func pageHTML(page browser.Page, selector string) (string, error) {
	raw := page.Raw()

	if selector == "" {
		content, err := raw.Content()
		if err != nil {
			return "", fmt.Errorf("failed to read page content: %w", err)
		}
		return content, nil
	}

	element, err := raw.QuerySelector(selector)
	if err != nil {
		return "", fmt.Errorf("selector query failed: %w", err)
	}
	if element == nil {
		return "", fmt.Errorf("no element found matching selector: %s", selector)
	}

	inner, err := element.InnerHTML()
	if err != nil {
		return "", fmt.Errorf("failed to read element content: %w", err)
	}
	return inner, nil
}
