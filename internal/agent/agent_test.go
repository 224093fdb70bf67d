package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calchat/calchat/internal/chatlog"
	"github.com/calchat/calchat/internal/llm"
	"github.com/calchat/calchat/internal/tools"
)

// scriptedLLM returns canned responses in order and records every request.
type scriptedLLM struct {
	responses []*llm.Response
	errs      []error
	requests  []llm.Request
}

func (s *scriptedLLM) Generate(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.requests = append(s.requests, req)
	i := len(s.requests) - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i >= len(s.responses) {
		// Keep repeating the last response; used by the round-cap test
		return s.responses[len(s.responses)-1], nil
	}
	return s.responses[i], nil
}

type logEntry struct {
	role string
	text string
}

type recordingLog struct {
	entries []logEntry
}

func (r *recordingLog) Log(_ context.Context, role, text string) {
	r.entries = append(r.entries, logEntry{role: role, text: text})
}

// newTestRegistry registers one stub tool under each calendar tool name.
func newTestRegistry(t *testing.T, handlers map[string]tools.Handler) *tools.Registry {
	t.Helper()

	r := tools.NewRegistry(nil)
	for name, handler := range handlers {
		require.NoError(t, r.Register(tools.Tool{
			Schema:  llm.ToolSchema{Name: name, Description: "test"},
			Handler: handler,
		}))
	}
	return r
}

func TestTurn_PlainReply(t *testing.T) {
	client := &scriptedLLM{responses: []*llm.Response{{Content: "Hello! How can I help?"}}}
	log := &recordingLog{}
	a := New(client, newTestRegistry(t, nil), log, Options{})

	reply := a.Turn(context.Background(), "hi")

	assert.Equal(t, "Hello! How can I help?", reply)
	require.Len(t, log.entries, 2)
	assert.Equal(t, chatlog.RoleUser, log.entries[0].role)
	assert.Equal(t, "hi", log.entries[0].text)
	assert.Equal(t, chatlog.RoleAgent, log.entries[1].role)
}

func TestTurn_SystemPromptCarriesCurrentDate(t *testing.T) {
	client := &scriptedLLM{responses: []*llm.Response{{Content: "ok"}}}
	a := New(client, newTestRegistry(t, nil), nil, Options{})
	a.now = func() time.Time { return time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC) }

	a.Turn(context.Background(), "hi")

	require.Len(t, client.requests, 1)
	assert.Contains(t, client.requests[0].System, "2026-03-10")
}

func TestTurn_SingleToolCall(t *testing.T) {
	calls := 0
	registry := newTestRegistry(t, map[string]tools.Handler{
		"create_event": func(_ context.Context, args json.RawMessage) (string, error) {
			calls++
			assert.JSONEq(t, `{"summary":"Sync","start_time":"tomorrow"}`, string(args))
			return "Created event \"Sync\" (ID: ev1).", nil
		},
	})

	client := &scriptedLLM{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{
			ID:        "call_1",
			Name:      "create_event",
			Arguments: json.RawMessage(`{"summary":"Sync","start_time":"tomorrow"}`),
		}}},
		{Content: "Done, I created the sync for tomorrow."},
	}}

	a := New(client, registry, nil, Options{})
	reply := a.Turn(context.Background(), "schedule a sync tomorrow")

	assert.Equal(t, "Done, I created the sync for tomorrow.", reply)
	assert.Equal(t, 1, calls, "the tool must run exactly once")

	// The second request must carry the tool result back to the model
	require.Len(t, client.requests, 2)
	messages := client.requests[1].Messages
	last := messages[len(messages)-1]
	assert.Equal(t, llm.RoleTool, last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Contains(t, last.Content, "ID: ev1")
}

func TestTurn_ToolErrorFedToModel(t *testing.T) {
	registry := newTestRegistry(t, map[string]tools.Handler{
		"cancel_event": func(context.Context, json.RawMessage) (string, error) {
			return "", errors.New("calendar: delete: event not found\nextra detail")
		},
	})

	client := &scriptedLLM{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "cancel_event", Arguments: json.RawMessage(`{}`)}}},
		{Content: "I couldn't find that event."},
	}}

	a := New(client, registry, nil, Options{})
	reply := a.Turn(context.Background(), "cancel my sync")

	assert.Equal(t, "I couldn't find that event.", reply)

	messages := client.requests[1].Messages
	last := messages[len(messages)-1]
	assert.Equal(t, llm.RoleTool, last.Role)
	assert.True(t, strings.HasPrefix(last.Content, "ERROR:"), "tool failures become tool results")
	assert.NotContains(t, last.Content, "\n", "error text fed to the model must be single-line")
}

func TestTurn_UnknownToolBecomesError(t *testing.T) {
	client := &scriptedLLM{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "send_email", Arguments: json.RawMessage(`{}`)}}},
		{Content: "I can only manage your calendar."},
	}}

	a := New(client, newTestRegistry(t, nil), nil, Options{})
	reply := a.Turn(context.Background(), "email bob")

	assert.Equal(t, "I can only manage your calendar.", reply)
	messages := client.requests[1].Messages
	assert.Contains(t, messages[len(messages)-1].Content, "unknown tool")
}

func TestTurn_LLMUnreachable(t *testing.T) {
	client := &scriptedLLM{
		errs:      []error{errors.New("connection refused")},
		responses: []*llm.Response{nil, {Content: "Hello again!"}},
	}

	a := New(client, newTestRegistry(t, nil), nil, Options{})

	reply := a.Turn(context.Background(), "hi")
	assert.Equal(t, llmUnavailableMessage, reply)

	// The conversation must stay usable after a transport failure
	reply = a.Turn(context.Background(), "hi again")
	assert.Equal(t, "Hello again!", reply)
}

func TestTurn_ToolRoundCap(t *testing.T) {
	calls := 0
	registry := newTestRegistry(t, map[string]tools.Handler{
		"list_events": func(context.Context, json.RawMessage) (string, error) {
			calls++
			return "No events found matching your criteria.", nil
		},
	})

	// The model never stops asking for tools
	client := &scriptedLLM{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{ID: "call_x", Name: "list_events", Arguments: json.RawMessage(`{}`)}}},
	}}

	a := New(client, registry, nil, Options{MaxToolRounds: 3})
	reply := a.Turn(context.Background(), "keep checking my calendar")

	assert.Contains(t, reply, "too many calendar operations")
	assert.Equal(t, 3, calls, "tool rounds must stop at the cap")
}

func TestTurn_HistoryCarriesAcrossTurns(t *testing.T) {
	client := &scriptedLLM{responses: []*llm.Response{
		{Content: "Noted."},
		{Content: "You said your name is Ada."},
	}}

	a := New(client, newTestRegistry(t, nil), nil, Options{})
	a.Turn(context.Background(), "my name is Ada")
	a.Turn(context.Background(), "what is my name?")

	require.Len(t, client.requests, 2)
	// Second request sees both prior turns plus the new user message
	assert.Len(t, client.requests[1].Messages, 3)
}

func TestNew_Defaults(t *testing.T) {
	a := New(&scriptedLLM{}, newTestRegistry(t, nil), nil, Options{})

	assert.NotEmpty(t, a.SessionID())
	assert.Equal(t, defaultMaxToolRounds, a.maxToolRounds)
}

func TestNew_SessionIDOverride(t *testing.T) {
	a := New(&scriptedLLM{}, newTestRegistry(t, nil), nil, Options{SessionID: "session-1"})
	assert.Equal(t, "session-1", a.SessionID())
}
