package agent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calchat/calchat/internal/chatlog"
	"github.com/calchat/calchat/internal/instrumentation"
	"github.com/calchat/calchat/internal/llm"
	"github.com/calchat/calchat/internal/logging"
	"github.com/calchat/calchat/internal/tools"
)

// defaultMaxToolRounds bounds how many tool rounds a single turn may take.
const defaultMaxToolRounds = 8

// maxErrorLen bounds how much error text is fed back to the model.
const maxErrorLen = 300

// llmUnavailableMessage is returned when the model itself cannot be reached.
// The turn is abandoned but the conversation stays usable.
const llmUnavailableMessage = "I could not reach the language model. Please check your connection and try again."

// Agent runs the conversation loop: user text goes to the model together with
// the calendar tool schemas, tool calls are dispatched in model order, and
// results are fed back until the model produces a plain reply.
type Agent struct {
	client   llm.Client
	registry *tools.Registry
	chatlog  chatlog.Logger
	logger   *slog.Logger
	metrics  *instrumentation.Metrics

	sessionID     string
	model         string
	maxToolRounds int
	now           func() time.Time

	history []llm.Message
}

// Options configures an Agent. Zero values select defaults.
type Options struct {
	// SessionID scopes chat-log rows; a random UUID is generated when empty.
	SessionID string

	// Model is the model name, used for log and metric labels only.
	Model string

	// MaxToolRounds caps tool rounds per turn (default 8).
	MaxToolRounds int

	// Metrics records turn and LLM request metrics. May be nil.
	Metrics *instrumentation.Metrics
}

// New creates an Agent. chatLogger may be chatlog.Nop{} when logging is
// disabled.
func New(client llm.Client, registry *tools.Registry, chatLogger chatlog.Logger, opts Options) *Agent {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	maxRounds := opts.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}

	if chatLogger == nil {
		chatLogger = chatlog.Nop{}
	}

	return &Agent{
		client:        client,
		registry:      registry,
		chatlog:       chatLogger,
		logger:        logging.WithSession(logging.WithService(slog.Default(), "agent"), sessionID),
		metrics:       opts.Metrics,
		sessionID:     sessionID,
		model:         opts.Model,
		maxToolRounds: maxRounds,
		now:           time.Now,
	}
}

// SessionID returns the id scoping this conversation's chat-log rows.
func (a *Agent) SessionID() string {
	return a.sessionID
}

// Turn processes one user message and returns the assistant's reply. The
// conversation history carries across turns. Tool and model failures never
// leave the history in a broken state; the next turn starts clean.
func (a *Agent) Turn(ctx context.Context, userText string) string {
	ctx, span := instrumentation.StartTurnSpan(ctx, a.sessionID, a.model)
	defer span.End()

	a.logger.DebugContext(ctx, "Turn started", logging.TextPreview(userText))
	a.history = append(a.history, llm.Message{Role: llm.RoleUser, Content: userText})
	a.chatlog.Log(ctx, chatlog.RoleUser, userText)

	system := systemPrompt(a.now())
	schemas := a.registry.Schemas()

	for round := 0; round <= a.maxToolRounds; round++ {
		start := time.Now()
		resp, err := a.client.Generate(ctx, llm.Request{
			System:   system,
			Messages: a.history,
			Tools:    schemas,
		})
		duration := time.Since(start)

		if err != nil {
			a.metrics.RecordLLMRequest(ctx, a.model, logging.StatusError, duration)
			a.metrics.RecordTurn(ctx, logging.StatusError)
			instrumentation.SetSpanError(span, err)
			a.logger.ErrorContext(ctx, "Model request failed",
				logging.Err(err),
				slog.Duration(logging.KeyDuration, duration),
			)
			return llmUnavailableMessage
		}
		a.metrics.RecordLLMRequest(ctx, a.model, logging.StatusSuccess, duration)

		if !resp.HasToolCalls() {
			reply := resp.Content
			a.history = append(a.history, llm.Message{Role: llm.RoleAssistant, Content: reply})
			a.chatlog.Log(ctx, chatlog.RoleAgent, reply)
			a.metrics.RecordTurn(ctx, logging.StatusSuccess)
			instrumentation.SetSpanSuccess(span)
			return reply
		}

		if round == a.maxToolRounds {
			break
		}

		a.history = append(a.history, llm.Message{
			Role:      llm.RoleAssistant,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			result := a.runTool(ctx, call)
			a.history = append(a.history, llm.Message{
				Role:       llm.RoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	reply := "I had to stop before finishing: the request took too many calendar operations. The steps completed so far have been applied; please check your calendar and rephrase the rest."
	a.history = append(a.history, llm.Message{Role: llm.RoleAssistant, Content: reply})
	a.chatlog.Log(ctx, chatlog.RoleAgent, reply)
	a.metrics.RecordTurn(ctx, "partial")
	a.logger.WarnContext(ctx, "Tool round cap reached",
		slog.Int("rounds", a.maxToolRounds),
	)
	return reply
}

// runTool dispatches one tool call. Failures become the tool result so the
// model can phrase them for the user.
func (a *Agent) runTool(ctx context.Context, call llm.ToolCall) string {
	result, err := a.registry.Dispatch(ctx, call.Name, call.Arguments)
	if err != nil {
		return "ERROR: " + sanitizeError(err)
	}
	a.logger.DebugContext(ctx, "Tool result",
		logging.Tool(call.Name),
		logging.TextPreview(result),
	)
	return result
}

// sanitizeError flattens an error into a single bounded line. The model sees
// this text verbatim; raw multi-line wire errors never reach it.
func sanitizeError(err error) string {
	s := strings.Join(strings.Fields(err.Error()), " ")
	return logging.Truncate(s, maxErrorLen)
}
