// Package tools defines the calendar operations the model may call and the
// registry that dispatches them. Each tool carries a JSON schema for the LLM,
// validates its arguments, and returns a human-readable result string the
// model turns into a reply. The same registry backs both the interactive chat
// loop and the MCP serve mode.
package tools
