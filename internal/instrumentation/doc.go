// Package instrumentation provides OpenTelemetry instrumentation for the
// calchat assistant.
//
// This package enables observability through:
//   - OpenTelemetry metrics for LLM requests, tool dispatches, and Google Calendar API calls
//   - Optional distributed tracing for conversation turns
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// LLM Metrics:
//   - llm_requests_total: Counter of chat completion requests by model and status
//   - llm_request_duration_seconds: Histogram of chat completion durations
//
// Tool Metrics:
//   - tool_invocations_total: Counter of calendar tool invocations by tool name and status
//   - tool_duration_seconds: Histogram of tool execution durations
//
// Calendar API Metrics:
//   - calendar_api_operations_total: Counter of Google Calendar API operations by operation and status
//
// Chat Log Metrics:
//   - chatlog_failures_total: Counter of failed chat log inserts
//
// Conversation Metrics:
//   - conversation_turns_total: Counter of completed conversation turns by status
//
// # Tracing
//
// Span helpers (StartTurnSpan, StartToolSpan, StartSpan) use the globally
// registered tracer provider, so spans degrade to no-ops when tracing is
// disabled. The agent wraps each conversation turn in a span and the tool
// registry wraps each dispatch.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: calchat)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "calchat",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordLLMRequest(ctx, "gpt-4o", "success", time.Since(start))
//	recorder.RecordToolInvocation(ctx, "create_event", "success", time.Since(start))
package instrumentation
