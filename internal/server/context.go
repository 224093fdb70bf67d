package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/calchat/calchat/internal/calendar"
	"github.com/calchat/calchat/internal/google"
	"github.com/calchat/calchat/internal/instrumentation"
)

// ServerContext holds the shared state of the MCP server: the token provider
// and one lazily created calendar client per account.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	provider google.TokenProvider

	mu              sync.RWMutex
	calendarClients map[string]*calendar.Client
	metrics         *instrumentation.Metrics
	shutdown        bool
}

// NewServerContext creates a new server context. Calendar clients are created
// on first use so the server starts even before any account is authorized.
func NewServerContext(ctx context.Context, provider google.TokenProvider) (*ServerContext, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		provider:        provider,
		calendarClients: make(map[string]*calendar.Client),
	}, nil
}

// SetMetrics attaches a metrics recorder applied to calendar clients created
// after this call. The recorder may be nil.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// CalendarClientForAccount returns the calendar client for a specific account,
// creating and caching it on first use. Accounts without a stored token get an
// error pointing at the consent flow.
func (sc *ServerContext) CalendarClientForAccount(account string) (*calendar.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.calendarClients[account]; ok {
		return client, nil
	}

	if !sc.provider.HasToken(account) {
		return nil, fmt.Errorf("no Google token stored for account %q; run: calchat auth", account)
	}

	client, err := calendar.New(sc.ctx, account, sc.provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar client for account %s: %w", account, err)
	}
	client = client.WithMetrics(sc.metrics)

	sc.calendarClients[account] = client
	return client, nil
}

// CalendarClient returns the calendar client for the default account.
func (sc *ServerContext) CalendarClient() (*calendar.Client, error) {
	return sc.CalendarClientForAccount("default")
}

// SetCalendarClientForAccount sets the calendar client for a specific account.
func (sc *ServerContext) SetCalendarClientForAccount(account string, client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClients[account] = client
}

// SetCalendarClient sets the calendar client for the default account.
func (sc *ServerContext) SetCalendarClient(client *calendar.Client) {
	sc.SetCalendarClientForAccount("default", client)
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
