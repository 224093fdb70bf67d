package google

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
// This abstraction allows different token sources (the file-based store, test
// fakes) to be plugged into the calendar client.
type TokenProvider interface {
	// TokenSource returns an OAuth2 token source for the specified account
	TokenSource(ctx context.Context, account string) (oauth2.TokenSource, error)

	// HasToken checks if a token exists for the specified account
	HasToken(account string) bool
}

// Store implements TokenProvider.
var _ TokenProvider = (*Store)(nil)

// StaticTokenProvider serves a fixed token. Useful for tests and for callers
// that already hold a valid token.
type StaticTokenProvider struct {
	Token *oauth2.Token
}

// TokenSource returns a static token source ignoring the account.
func (p *StaticTokenProvider) TokenSource(ctx context.Context, account string) (oauth2.TokenSource, error) {
	return oauth2.StaticTokenSource(p.Token), nil
}

// HasToken reports whether a token is configured.
func (p *StaticTokenProvider) HasToken(account string) bool {
	return p.Token != nil
}
