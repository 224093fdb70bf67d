// Package chatlog appends conversation turns to a remote Supabase table.
//
// Every user message and agent reply is written as one insert-only row tagged
// with the session id. Logging is strictly best-effort: failures are reported
// via slog and swallowed, and a short request timeout guarantees that a slow
// or unreachable store never blocks the conversation loop. Chat logging is
// not transactional with calendar mutations.
package chatlog
