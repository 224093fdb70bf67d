// Package agent implements the conversation loop between the user, the
// language model, and the calendar tools. Each turn sends the history and the
// tool schemas to the model, executes whatever tools it calls, and feeds the
// results back until the model answers in plain text. Tool rounds per turn
// are bounded; no failure is fatal to the conversation.
package agent
