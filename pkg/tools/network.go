package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/windlass-sh/windlass/pkg/browser"
)

// The network module: tools built directly on the page-scoped CDP
// session rather than the high-level driver surface.

// NetworkThrottleTool emulates network conditions on the active tab.
type NetworkThrottleTool struct {
	cdp *browser.CDPManager
}

// NewNetworkThrottleTool creates a new network throttle tool.
func NewNetworkThrottleTool(cdp *browser.CDPManager) *NetworkThrottleTool {
	return &NetworkThrottleTool{cdp: cdp}
}

// Name returns the tool name.
func (t *NetworkThrottleTool) Name() string {
	return "browser_network_throttle"
}

// Description returns the tool description.
func (t *NetworkThrottleTool) Description() string {
	return "Emulate network conditions on the active tab: latency, bandwidth caps, or full offline mode. Zero values leave a dimension unthrottled."
}

// Schema returns the tool's JSON schema.
func (t *NetworkThrottleTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"offline": map[string]interface{}{
				"type":        "boolean",
				"description": "Simulate a dropped connection",
			},
			"latency_ms": map[string]interface{}{
				"type":        "number",
				"description": "Added round-trip latency in milliseconds",
			},
			"download_bps": map[string]interface{}{
				"type":        "number",
				"description": "Download throughput cap in bytes per second (0 = unlimited)",
			},
			"upload_bps": map[string]interface{}{
				"type":        "number",
				"description": "Upload throughput cap in bytes per second (0 = unlimited)",
			},
		},
		nil,
	)
}

// ThrottleInput represents the parameters for network throttling.
type ThrottleInput struct {
	Offline     bool    `json:"offline"`
	LatencyMs   float64 `json:"latency_ms"`
	DownloadBps float64 `json:"download_bps"`
	UploadBps   float64 `json:"upload_bps"`
}

// Execute applies network conditions.
func (t *NetworkThrottleTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input ThrottleInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}

	session, err := t.cdp.Session()
	if err != nil {
		return "", nil, err
	}

	if _, err := session.Send("Network.enable", nil); err != nil {
		return "", nil, fmt.Errorf("failed to enable network domain: %w", err)
	}

	// The protocol uses -1 for "unlimited"
	download := float64(-1)
	if input.DownloadBps > 0 {
		download = input.DownloadBps
	}
	upload := float64(-1)
	if input.UploadBps > 0 {
		upload = input.UploadBps
	}

	_, err = session.Send("Network.emulateNetworkConditions", map[string]interface{}{
		"offline":            input.Offline,
		"latency":            input.LatencyMs,
		"downloadThroughput": download,
		"uploadThroughput":   upload,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to apply network conditions: %w", err)
	}

	if input.Offline {
		return "The active tab is now offline.", nil, nil
	}
	return fmt.Sprintf("Applied network conditions: latency=%gms, download=%gBps, upload=%gBps.",
		input.LatencyMs, download, upload), nil, nil
}

// NetworkSetHeadersTool injects extra HTTP headers into every request
// of the active tab.
type NetworkSetHeadersTool struct {
	cdp *browser.CDPManager
}

// NewNetworkSetHeadersTool creates a new header injection tool.
func NewNetworkSetHeadersTool(cdp *browser.CDPManager) *NetworkSetHeadersTool {
	return &NetworkSetHeadersTool{cdp: cdp}
}

// Name returns the tool name.
func (t *NetworkSetHeadersTool) Name() string {
	return "browser_network_set_headers"
}

// Description returns the tool description.
func (t *NetworkSetHeadersTool) Description() string {
	return "Attach extra HTTP headers to every request made by the active tab until the tab changes or the headers are replaced."
}

// Schema returns the tool's JSON schema.
func (t *NetworkSetHeadersTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"headers": map[string]interface{}{
				"type":        "object",
				"description": "Header name/value pairs to attach",
			},
		},
		[]string{"headers"},
	)
}

// SetHeadersInput represents the parameters for header injection.
type SetHeadersInput struct {
	Headers map[string]string `json:"headers"`
}

// Execute injects headers.
func (t *NetworkSetHeadersTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var input SetHeadersInput
	if err := unmarshalArgs(args, &input); err != nil {
		return "", nil, err
	}
	if len(input.Headers) == 0 {
		return "", nil, fmt.Errorf("at least one header is required")
	}

	session, err := t.cdp.Session()
	if err != nil {
		return "", nil, err
	}

	if _, err := session.Send("Network.enable", nil); err != nil {
		return "", nil, fmt.Errorf("failed to enable network domain: %w", err)
	}

	headers := make(map[string]interface{}, len(input.Headers))
	for k, v := range input.Headers {
		headers[k] = v
	}

	if _, err := session.Send("Network.setExtraHTTPHeaders", map[string]interface{}{"headers": headers}); err != nil {
		return "", nil, fmt.Errorf("failed to set headers: %w", err)
	}

	return fmt.Sprintf("Attached %d extra header(s) to the active tab's requests.", len(input.Headers)), nil, nil
}

// NetworkClearCacheTool clears the browser cache for the active tab.
type NetworkClearCacheTool struct {
	cdp *browser.CDPManager
}

// NewNetworkClearCacheTool creates a new cache clearing tool.
func NewNetworkClearCacheTool(cdp *browser.CDPManager) *NetworkClearCacheTool {
	return &NetworkClearCacheTool{cdp: cdp}
}

// Name returns the tool name.
func (t *NetworkClearCacheTool) Name() string {
	return "browser_network_clear_cache"
}

// Description returns the tool description.
func (t *NetworkClearCacheTool) Description() string {
	return "Clear the browser cache seen by the active tab. Useful before measuring cold-load behavior."
}

// Schema returns the tool's JSON schema.
func (t *NetworkClearCacheTool) Schema() map[string]interface{} {
	return BaseToolSchema(map[string]interface{}{}, nil)
}

// Execute clears the cache.
func (t *NetworkClearCacheTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	session, err := t.cdp.Session()
	if err != nil {
		return "", nil, err
	}

	if _, err := session.Send("Network.enable", nil); err != nil {
		return "", nil, fmt.Errorf("failed to enable network domain: %w", err)
	}
	if _, err := session.Send("Network.clearBrowserCache", nil); err != nil {
		return "", nil, fmt.Errorf("failed to clear cache: %w", err)
	}

	return "Browser cache cleared.", nil, nil
}
