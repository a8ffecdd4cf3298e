package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotification(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"numeric id", `{"jsonrpc":"2.0","id":1,"method":"ping"}`, false},
		{"string id", `{"jsonrpc":"2.0","id":"abc","method":"ping"}`, false},
		{"zero id", `{"jsonrpc":"2.0","id":0,"method":"ping"}`, false},
		{"missing id", `{"jsonrpc":"2.0","method":"notifications/initialized"}`, true},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"notifications/initialized"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Request
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &req))
			assert.Equal(t, tt.want, req.IsNotification())
		})
	}
}

func TestErrorResultSetsFlag(t *testing.T) {
	result := ErrorResult("boom")
	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	assert.Equal(t, "boom", result.Content[0].Text)
}

func TestTextResultOmitsErrorFlagOnWire(t *testing.T) {
	data, err := json.Marshal(TextResult("fine"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "isError")
}
