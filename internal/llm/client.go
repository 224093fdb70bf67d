package llm

import (
	"context"
	"encoding/json"
)

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single entry in the conversation history.
type Message struct {
	Role    string
	Content string

	// ToolCalls is set on assistant messages that request tool execution.
	ToolCalls []ToolCall

	// ToolCallID links a tool-result message back to the call it answers.
	ToolCallID string
}

// ToolCall is a structured request emitted by the model naming one tool
// with JSON-encoded arguments.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolSchema describes a tool offered to the model (JSON Schema format).
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON Schema properties
	Required    []string
}

// Request is one completion request: the running conversation plus the fixed
// tool schemas.
type Request struct {
	System   string
	Messages []Message
	Tools    []ToolSchema
}

// Response is the model's answer: either a final text reply, or one or more
// tool calls to execute (Content may accompany tool calls).
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// HasToolCalls reports whether the model requested tool execution.
func (r *Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// Client is the interface to a chat completion model with tool calling.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
