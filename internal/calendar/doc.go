// Package calendar provides a thin client for the Google Calendar API.
//
// The client exposes the four operations the assistant needs (list, create,
// update, delete) plus get, each as a single authenticated call with the
// JSON response mapped to simple domain types. Failures are wrapped into a
// typed *Error classified by kind (not found, permission denied, rate
// limited, invalid input) so callers can phrase them for the user.
//
// Malformed time ranges (end not after start) are rejected locally before
// any call leaves the process. There are no retries, no batching and no
// local caching; list queries return a single remote page.
package calendar
