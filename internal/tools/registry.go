package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/calchat/calchat/internal/instrumentation"
	"github.com/calchat/calchat/internal/llm"
	"github.com/calchat/calchat/internal/logging"
)

// Handler executes a tool call and returns a human-readable result for the
// model. Errors are returned to the caller, which decides how to surface them.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool pairs a schema advertised to the model with the handler that backs it.
type Tool struct {
	Schema  llm.ToolSchema
	Handler Handler
}

// Registry is a dispatch table of tools keyed by name. Registration order is
// preserved so the model always sees schemas in a stable order.
type Registry struct {
	tools   map[string]Tool
	order   []string
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// NewRegistry creates an empty registry. metrics may be nil.
func NewRegistry(metrics *instrumentation.Metrics) *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		metrics: metrics,
		logger:  logging.WithService(slog.Default(), "tools"),
	}
}

// Register adds a tool to the registry. Duplicate names are rejected.
func (r *Registry) Register(t Tool) error {
	if t.Schema.Name == "" {
		return fmt.Errorf("tool has no name")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %s has no handler", t.Schema.Name)
	}
	if _, exists := r.tools[t.Schema.Name]; exists {
		return fmt.Errorf("tool %s already registered", t.Schema.Name)
	}

	r.tools[t.Schema.Name] = t
	r.order = append(r.order, t.Schema.Name)
	return nil
}

// Schemas returns the registered tool schemas in registration order.
func (r *Registry) Schemas() []llm.ToolSchema {
	schemas := make([]llm.ToolSchema, 0, len(r.order))
	for _, name := range r.order {
		schemas = append(schemas, r.tools[name].Schema)
	}
	return schemas
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Dispatch runs the named tool and records its outcome.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (string, error) {
	tool, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	ctx, span := instrumentation.StartToolSpan(ctx, name)
	defer span.End()

	start := time.Now()
	result, err := tool.Handler(ctx, args)
	duration := time.Since(start)

	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
	}
	r.metrics.RecordToolInvocation(ctx, name, status, duration)

	logger := logging.WithTool(r.logger, name)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		logger.WarnContext(ctx, "Tool failed",
			logging.Status(status),
			logging.Err(err),
			slog.Duration(logging.KeyDuration, duration),
		)
		return "", err
	}

	instrumentation.SetSpanSuccess(span)
	logger.DebugContext(ctx, "Tool completed",
		logging.Status(status),
		slog.Duration(logging.KeyDuration, duration),
	)
	return result, nil
}
