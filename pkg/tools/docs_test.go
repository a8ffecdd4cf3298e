package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocsToolListsOnlyLiveTopics(t *testing.T) {
	r := newTestRegistry(t)
	tool, ok := r.Lookup("browser_docs")
	require.True(t, ok)

	text, _, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)

	assert.Contains(t, text, "browser_navigate")
	assert.NotContains(t, text, "browser_screenshot", "inactive module tools are not topics")

	_, err = r.LoadModule("media")
	require.NoError(t, err)

	text, _, err = tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, text, "browser_screenshot")
}

func TestDocsToolRendersTopic(t *testing.T) {
	r := newTestRegistry(t)
	tool, ok := r.Lookup("browser_docs")
	require.True(t, ok)

	text, _, err := tool.Execute(context.Background(), json.RawMessage(`{"topic":"browser_interact"}`))
	require.NoError(t, err)

	assert.Contains(t, text, "# browser_interact")
	assert.Contains(t, text, "Usage notes:")
	assert.Contains(t, text, "Parameters:")
	assert.Contains(t, text, `"actions"`)
}

func TestDocsToolUnknownTopic(t *testing.T) {
	r := newTestRegistry(t)
	tool, ok := r.Lookup("browser_docs")
	require.True(t, ok)

	_, _, err := tool.Execute(context.Background(), json.RawMessage(`{"topic":"browser_screenshot"}`))
	require.Error(t, err, "inactive module tools are not documentable")
	assert.Contains(t, err.Error(), "unknown topic")
}
