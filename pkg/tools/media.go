package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/playwright-community/playwright-go"

	"github.com/windlass-sh/windlass/pkg/browser"
)

// The media module: heavyweight capture tools kept out of the core set.

// ScreenshotTool captures the active tab as a PNG.
type ScreenshotTool struct {
	conn *browser.Manager
}

// NewScreenshotTool creates a new screenshot tool.
func NewScreenshotTool(conn *browser.Manager) *ScreenshotTool {
	return &ScreenshotTool{conn: conn}
}

// Name returns the tool name.
func (t *ScreenshotTool) Name() string {
	return "browser_screenshot"
}

// Description returns the tool description.
func (t *ScreenshotTool) Description() string {
	return "Capture a PNG screenshot of the active tab. Writes to a file when a path is given, otherwise returns the image as base64 metadata."
}

// Schema returns the tool's JSON schema.
func (t *ScreenshotTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"full_page": map[string]interface{}{
				"type":        "boolean",
				"description": "Capture the full scrollable page instead of the viewport",
			},
			"path": map[string]interface{}{
				"type":        "string",
				"description": "File path to write the PNG to (base64 result when omitted)",
			},
		},
		nil,
	)
}

// ScreenshotInput represents the parameters for a screenshot.
type ScreenshotInput struct {
	FullPage bool   `json:"full_page"`
	Path     string `json:"path"`
}

// Execute captures a screenshot.
func (t *ScreenshotTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input ScreenshotInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}

	page, err := t.conn.ActivePage()
	if err != nil {
		return "", nil, err
	}

	data, err := page.Raw().Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(input.FullPage),
	})
	if err != nil {
		return "", nil, fmt.Errorf("screenshot failed: %w", err)
	}

	if input.Path != "" {
		if err := os.MkdirAll(filepath.Dir(input.Path), 0750); err != nil {
			return "", nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(input.Path, data, 0600); err != nil {
			return "", nil, fmt.Errorf("failed to write screenshot: %w", err)
		}
		return fmt.Sprintf("Captured %d-byte screenshot of %s to %s.", len(data), page.URL(), input.Path), nil, nil
	}

	return fmt.Sprintf("Captured %d-byte screenshot of %s.", len(data), page.URL()),
		map[string]interface{}{"image_base64": base64.StdEncoding.EncodeToString(data)}, nil
}

// ExportPDFTool renders the active tab to a PDF file. The produced file
// is validated before success is reported: an unreadable PDF handed to
// the caller is worse than an error.
type ExportPDFTool struct {
	conn *browser.Manager
}

// NewExportPDFTool creates a new PDF export tool.
func NewExportPDFTool(conn *browser.Manager) *ExportPDFTool {
	return &ExportPDFTool{conn: conn}
}

// Name returns the tool name.
func (t *ExportPDFTool) Name() string {
	return "browser_export_pdf"
}

// Description returns the tool description.
func (t *ExportPDFTool) Description() string {
	return "Render the active tab to a PDF file. Requires a headless launched browser. The output is validated and its page count reported."
}

// Schema returns the tool's JSON schema.
func (t *ExportPDFTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "File path to write the PDF to",
			},
		},
		[]string{"path"},
	)
}

// ExportPDFInput represents the parameters for PDF export.
type ExportPDFInput struct {
	Path string `json:"path"`
}

// Execute exports a PDF.
func (t *ExportPDFTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input ExportPDFInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}
	if input.Path == "" {
		return "", nil, fmt.Errorf("path is required")
	}

	page, err := t.conn.ActivePage()
	if err != nil {
		return "", nil, err
	}

	data, err := page.Raw().PDF(playwright.PagePdfOptions{})
	if err != nil {
		return "", nil, fmt.Errorf("PDF export failed (only headless launched browsers support it): %w", err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("driver returned an empty PDF")
	}

	if err := os.MkdirAll(filepath.Dir(input.Path), 0750); err != nil {
		return "", nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(input.Path, data, 0600); err != nil {
		return "", nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	pageCount, err := pdfapi.PageCountFile(input.Path)
	if err != nil {
		return "", nil, fmt.Errorf("exported PDF failed validation: %w", err)
	}

	return fmt.Sprintf("Exported %s to %s (%d pages, %d bytes).", page.URL(), input.Path, pageCount, len(data)),
		map[string]interface{}{"pages": pageCount, "bytes": len(data)}, nil
}
