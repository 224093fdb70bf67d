// Package server provides the MCP serve-mode infrastructure: a shared server
// context with lazily created per-account calendar clients, the bridge that
// exposes the calendar tool registry over MCP, and a dedicated Prometheus
// metrics server.
package server
