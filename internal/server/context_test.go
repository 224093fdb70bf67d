package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/calchat/calchat/internal/calendar"
	"github.com/calchat/calchat/internal/google"
)

// noTokenProvider reports no stored tokens for any account.
type noTokenProvider struct{}

func (noTokenProvider) TokenSource(context.Context, string) (oauth2.TokenSource, error) {
	return nil, google.ErrConsentRequired
}

func (noTokenProvider) HasToken(string) bool { return false }

func TestNewServerContext_RequiresProvider(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil)
	assert.Error(t, err)
}

func TestCalendarClientForAccount_NoToken(t *testing.T) {
	sc, err := NewServerContext(context.Background(), noTokenProvider{})
	require.NoError(t, err)

	_, err = sc.CalendarClientForAccount("default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calchat auth")
}

func TestCalendarClientForAccount_ReturnsCached(t *testing.T) {
	sc, err := NewServerContext(context.Background(), noTokenProvider{})
	require.NoError(t, err)

	cached := calendar.NewFromService(nil, "default")
	sc.SetCalendarClient(cached)

	got, err := sc.CalendarClient()
	require.NoError(t, err)
	assert.Same(t, cached, got)
}

func TestServerContext_Shutdown(t *testing.T) {
	sc, err := NewServerContext(context.Background(), noTokenProvider{})
	require.NoError(t, err)

	assert.False(t, sc.IsShutdown())
	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())

	// Idempotent
	require.NoError(t, sc.Shutdown())

	select {
	case <-sc.Context().Done():
	default:
		t.Error("expected server context to be cancelled after shutdown")
	}
}
