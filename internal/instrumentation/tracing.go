package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for all calchat spans.
const TracerName = "github.com/calchat/calchat"

// Span attribute keys.
const (
	SpanAttrTool    = "calchat.tool"
	SpanAttrSession = "calchat.session"
	SpanAttrModel   = "calchat.model"
	SpanAttrStatus  = "calchat.status"
)

// StartSpan starts a span using the globally registered tracer provider.
// Without a registered provider the returned span is a no-op, so callers
// never need to gate on whether tracing is enabled.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartTurnSpan starts a span covering one conversation turn.
func StartTurnSpan(ctx context.Context, sessionID, model string) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "agent.turn",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String(SpanAttrSession, sessionID),
			attribute.String(SpanAttrModel, model),
		),
	)
}

// StartToolSpan starts a span covering one tool dispatch. The span name
// carries the tool so traces group by operation.
func StartToolSpan(ctx context.Context, toolName string) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "tool."+toolName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String(SpanAttrTool, toolName)),
	)
}

// SetSpanError records err on the span and marks it failed.
func SetSpanError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(SpanAttrStatus, "error"))
}

// SetSpanSuccess marks the span as completed successfully.
func SetSpanSuccess(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
	span.SetAttributes(attribute.String(SpanAttrStatus, "success"))
}
