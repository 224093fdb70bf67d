package server

import (
	"context"
	"encoding/json"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calchat/calchat/internal/llm"
	"github.com/calchat/calchat/internal/tools"
)

func TestRegisterMCPTools(t *testing.T) {
	registry := tools.NewRegistry(nil)
	require.NoError(t, registry.Register(tools.Tool{
		Schema: llm.ToolSchema{
			Name:        "list_events",
			Description: "List events",
			Parameters: map[string]any{
				"time_min": map[string]any{"type": "string"},
			},
		},
		Handler: func(context.Context, json.RawMessage) (string, error) {
			return "No events found matching your criteria.", nil
		},
	}))

	srv := mcpserver.NewMCPServer("calchat-test", "0.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	require.NoError(t, RegisterMCPTools(srv, registry))
}

func TestToolInputSchema_OmitsEmptyRequired(t *testing.T) {
	raw, err := toolInputSchema(llm.ToolSchema{
		Name: "list_events",
		Parameters: map[string]any{
			"time_min": map[string]any{"type": "string"},
		},
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "object", doc["type"])
	assert.NotContains(t, doc, "required")
}

func TestToolInputSchema_KeepsRequired(t *testing.T) {
	raw, err := toolInputSchema(llm.ToolSchema{
		Name: "create_event",
		Parameters: map[string]any{
			"summary":    map[string]any{"type": "string"},
			"start_time": map[string]any{"type": "string"},
		},
		Required: []string{"summary", "start_time"},
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, []any{"summary", "start_time"}, doc["required"])
}
