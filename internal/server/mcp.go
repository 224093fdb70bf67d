package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/calchat/calchat/internal/llm"
	"github.com/calchat/calchat/internal/tools"
)

// toolInputSchema renders a tool schema as the raw JSON schema document MCP
// clients expect. The required key is omitted when no field is required;
// a literal null there trips strict schema validators.
func toolInputSchema(schema llm.ToolSchema) (json.RawMessage, error) {
	doc := map[string]any{
		"type":       "object",
		"properties": schema.Parameters,
	}
	if len(schema.Required) > 0 {
		doc["required"] = schema.Required
	}
	return json.Marshal(doc)
}

// RegisterMCPTools exposes every tool in the registry over MCP. The registry
// already owns schemas and validation, so the bridge only translates the
// request and result shapes.
func RegisterMCPTools(s *mcpserver.MCPServer, registry *tools.Registry) error {
	for _, schema := range registry.Schemas() {
		raw, err := toolInputSchema(schema)
		if err != nil {
			return fmt.Errorf("failed to marshal schema for tool %s: %w", schema.Name, err)
		}

		tool := mcp.NewToolWithRawSchema(schema.Name, schema.Description, raw)

		name := schema.Name
		s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, err := json.Marshal(request.GetArguments())
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
			}

			result, err := registry.Dispatch(ctx, name, args)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(result), nil
		})
	}

	return nil
}
