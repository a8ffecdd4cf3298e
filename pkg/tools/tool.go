package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/windlass-sh/windlass/pkg/browser"
	"github.com/windlass-sh/windlass/pkg/logging"
)

// Tool represents one externally invocable operation. Tools are called
// by the protocol layer with raw JSON arguments and return prose plus
// optional structured metadata.
type Tool interface {
	// Name returns the unique identifier for this tool (e.g., "browser_navigate")
	Name() string

	// Description returns a human-readable description of what this tool does
	Description() string

	// Schema returns the JSON schema for this tool's input parameters
	Schema() map[string]interface{}

	// Execute runs the tool with the given JSON arguments.
	// Returns: (result text, metadata map, error)
	// Metadata is optional and can be nil.
	Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error)
}

// Deps bundles the shared singletons tools draw on. They are owned by
// the process and injected, never reached through package globals.
type Deps struct {
	Conn *browser.Manager
	CDP  *browser.CDPManager
	Log  *logging.Logger
}

// BaseToolSchema creates a common JSON schema structure for a tool
// with the given properties and required fields
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// unmarshalArgs decodes tool arguments, treating absent params as an
// empty object.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}
