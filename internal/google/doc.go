// Package google provides OAuth2 authentication and token management for the
// Google Calendar API.
//
// The application identity (client id and secret) is read from a local
// client-descriptor JSON file. Per-account access and refresh tokens are
// cached on disk under the user cache directory and refreshed transparently;
// refreshed tokens are written back so later runs reuse them.
//
// The TokenProvider interface allows different token sources to be plugged in,
// keeping the calendar client independent of how credentials are obtained.
package google
