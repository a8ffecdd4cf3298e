package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulesToolListShowsActivationState(t *testing.T) {
	r := newTestRegistry(t)
	tool, ok := r.Lookup("browser_modules")
	require.True(t, ok)

	_, err := r.LoadModule("tabs")
	require.NoError(t, err)

	text, _, err := tool.Execute(context.Background(), json.RawMessage(`{"action":"list"}`))
	require.NoError(t, err)

	assert.Contains(t, text, "tabs [active]")
	assert.Contains(t, text, "media [inactive]")
	assert.Contains(t, text, "network [inactive]")
}

func TestModulesToolLoadRoundTrip(t *testing.T) {
	r := newTestRegistry(t)
	tool, ok := r.Lookup("browser_modules")
	require.True(t, ok)

	text, _, err := tool.Execute(context.Background(), json.RawMessage(`{"action":"load","module":"network"}`))
	require.NoError(t, err)
	assert.Contains(t, text, `Module "network" loaded`)

	_, found := r.Lookup("browser_network_throttle")
	assert.True(t, found)

	text, _, err = tool.Execute(context.Background(), json.RawMessage(`{"action":"unload","module":"network"}`))
	require.NoError(t, err)
	assert.Contains(t, text, `Module "network" unloaded`)

	_, found = r.Lookup("browser_network_throttle")
	assert.False(t, found)
}

func TestModulesToolValidation(t *testing.T) {
	r := newTestRegistry(t)
	tool, ok := r.Lookup("browser_modules")
	require.True(t, ok)

	tests := []struct {
		name    string
		args    string
		wantErr string
	}{
		{"missing action", `{}`, "action is required"},
		{"bad action", `{"action":"toggle"}`, "invalid action"},
		{"load without module", `{"action":"load"}`, "module name is required"},
		{"unload without module", `{"action":"unload"}`, "module name is required"},
		{"unknown module", `{"action":"load","module":"nope"}`, "unknown module"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tool.Execute(context.Background(), json.RawMessage(tt.args))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestModulesToolSchemaEnumTracksKnownModules(t *testing.T) {
	r := newTestRegistry(t)
	tool, ok := r.Lookup("browser_modules")
	require.True(t, ok)

	props := tool.Schema()["properties"].(map[string]interface{})
	module := props["module"].(map[string]interface{})
	assert.Equal(t, []string{"media", "network", "tabs"}, module["enum"])
}
