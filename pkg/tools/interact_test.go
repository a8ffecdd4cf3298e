package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteractToolMetadata(t *testing.T) {
	tool := NewInteractTool(nil)
	assert.Equal(t, "browser_interact", tool.Name())

	schema := tool.Schema()
	assert.Contains(t, schema["required"], "actions")
}

func TestInteractToolValidatesWholeSequenceUpFront(t *testing.T) {
	tool := NewInteractTool(nil)

	tests := []struct {
		name    string
		args    string
		wantErr string
	}{
		{"no actions", `{"actions":[]}`, "at least one action"},
		{"unknown action", `{"actions":[{"action":"drag","selector":"#a"}]}`, `invalid action "drag"`},
		{"click without selector", `{"actions":[{"action":"click"}]}`, "selector is required for click"},
		{"type without selector", `{"actions":[{"action":"type","text":"hi"}]}`, "selector is required for type"},
		{
			// A valid first step must not mask a bad later step
			"bad step after good step",
			`{"actions":[{"action":"click","selector":"#ok"},{"action":"hover"}]}`,
			"step 2: selector is required for hover",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tool.Execute(context.Background(), json.RawMessage(tt.args))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDescribeAction(t *testing.T) {
	assert.Equal(t, `type "hi" into #q`, describeAction(ActionInput{Action: "type", Text: "hi", Selector: "#q"}))
	assert.Equal(t, "click #submit", describeAction(ActionInput{Action: "click", Selector: "#submit"}))
	assert.Equal(t, "scroll (0, 400)", describeAction(ActionInput{Action: "scroll", DeltaY: 400}))
	assert.Equal(t, "scroll (0, 400) at #list", describeAction(ActionInput{Action: "scroll", DeltaY: 400, Selector: "#list"}))
}
