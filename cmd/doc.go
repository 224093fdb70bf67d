// Package cmd implements the command-line interface for calchat.
//
// This package provides the following commands:
//   - chat: Start an interactive calendar chat session
//   - auth: Run the Google OAuth consent flow and store the token
//   - serve: Start the MCP server exposing the calendar tools to AI assistants
//   - version: Display version information
//
// The chat command is the default command when no subcommand is specified.
package cmd
