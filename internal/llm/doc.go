// Package llm abstracts the hosted language model behind a small Client
// interface: a conversation plus tool schemas go in, a final reply or a set
// of structured tool calls comes out. The OpenAI adapter normalizes the
// vendor message format; the agent loop never touches SDK types directly.
package llm
