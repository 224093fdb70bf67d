// Package logging provides structured logging utilities for the calchat application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Consistent attribute naming across the codebase
//   - Sanitization helpers so tokens and full chat transcripts never reach logs
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "create_event")
//	logger.Info("event created", logging.Status(logging.StatusSuccess))
//
// Sanitize sensitive data before logging:
//
//	logger.Debug("supabase request", "key", logging.SanitizeToken(key))
package logging
