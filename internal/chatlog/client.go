package chatlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/calchat/calchat/internal/instrumentation"
	"github.com/calchat/calchat/internal/logging"
)

// Conversation roles stored in the chat log.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// defaultTimeout bounds a single insert so a slow or unreachable log store
// can never hang a conversation turn.
const defaultTimeout = 5 * time.Second

// table is the insert-only Supabase table holding chat rows.
const table = "chats"

// Logger appends conversation turns to a persistence store. Implementations
// must be best-effort: Log has no error return and must never panic or block
// beyond a short bound.
type Logger interface {
	Log(ctx context.Context, role, text string)
}

// Client writes chat rows to a Supabase project via its PostgREST endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	sessionID  string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
}

// row is the wire format of one chat log entry. The updated_at column is
// filled in by the store.
type row struct {
	ChatID  string `json:"chat_id"`
	Role    string `json:"role"`
	Message string `json:"message"`
}

// New creates a chat log client for the given Supabase project. All rows are
// tagged with sessionID.
func New(baseURL, apiKey, sessionID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		sessionID:  sessionID,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logging.WithService(logger, "chatlog"),
	}
	c.logger.Debug("chat log store configured",
		slog.String("url", c.baseURL),
		slog.String("key", logging.SanitizeToken(apiKey)),
	)
	return c
}

// WithMetrics attaches a recorder counting failed inserts. The recorder may
// be nil; recording is then a no-op.
func (c *Client) WithMetrics(m *instrumentation.Metrics) *Client {
	c.metrics = m
	return c
}

// Log appends one message to the chat log. Failures are logged locally and
// swallowed; chat logging is best-effort and never interrupts a conversation.
func (c *Client) Log(ctx context.Context, role, text string) {
	if err := c.insert(ctx, role, text); err != nil {
		c.metrics.RecordChatLogFailure(ctx)
		c.logger.Warn("failed to append chat log entry",
			logging.Operation("insert"),
			logging.Session(c.sessionID),
			logging.Role(role),
			logging.Err(err))
	}
}

func (c *Client) insert(ctx context.Context, role, text string) error {
	body, err := json.Marshal(row{ChatID: c.sessionID, Role: role, Message: text})
	if err != nil {
		return fmt.Errorf("failed to encode chat row: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("insert request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("log store returned status %d", resp.StatusCode)
	}
	return nil
}

// Nop is a Logger that drops everything. Used when no log store is configured.
type Nop struct{}

// Log implements Logger.
func (Nop) Log(ctx context.Context, role, text string) {}
