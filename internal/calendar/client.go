package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/calchat/calchat/internal/google"
	"github.com/calchat/calchat/internal/instrumentation"
	"github.com/calchat/calchat/internal/logging"
)

// defaultMaxResults bounds a single list page when the caller does not say.
const defaultMaxResults = 10

// maxListResults is the hard cap the remote API accepts per page.
const maxListResults = 250

// Client wraps the Google Calendar service. Every operation is a single
// authenticated call; there are no retries and no local caching.
type Client struct {
	svc     *calendar.Service
	account string
	metrics *instrumentation.Metrics
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// New creates a Calendar client authenticated via the provided token
// provider for the specified account.
func New(ctx context.Context, account string, provider google.TokenProvider) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	ts, err := provider.TokenSource(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	client := oauth2.NewClient(ctx, ts)

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc, account: account}, nil
}

// NewFromService creates a Client from an existing Calendar service.
// Used by tests to point the client at a fake API endpoint.
func NewFromService(svc *calendar.Service, account string) *Client {
	return &Client{svc: svc, account: account}
}

// WithMetrics attaches a recorder counting remote API operations. The
// recorder may be nil; recording is then a no-op.
func (c *Client) WithMetrics(m *instrumentation.Metrics) *Client {
	c.metrics = m
	return c
}

// record counts the outcome of one remote API call.
func (c *Client) record(ctx context.Context, op string, err error) {
	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
	}
	c.metrics.RecordCalendarOperation(ctx, op, status)
}

// ListEvents lists events in a calendar within a time range. A query string
// filters on summary/description/location. The result is one remote page;
// an empty page is a valid empty result, not an error.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, query string, maxResults int64) (*ListResult, error) {
	if !timeMax.IsZero() && !timeMax.After(timeMin) {
		return nil, &Error{Op: "list", Kind: KindInvalidInput, Err: ErrMalformedTimeRange}
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults > maxListResults {
		maxResults = maxListResults
	}

	call := c.svc.Events.List(calendarID).
		Context(ctx).
		TimeMin(timeMin.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults)

	if !timeMax.IsZero() {
		call = call.TimeMax(timeMax.Format(time.RFC3339))
	}
	if query != "" {
		call = call.Q(query)
	}

	events, err := call.Do()
	c.record(ctx, "list", err)
	if err != nil {
		return nil, wrapAPIError("list", err)
	}

	result := &ListResult{More: events.NextPageToken != ""}
	for _, event := range events.Items {
		result.Events = append(result.Events, toEventSummary(event))
	}

	return result, nil
}

// GetEvent retrieves a specific event by ID.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*EventSummary, error) {
	event, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	c.record(ctx, "get", err)
	if err != nil {
		return nil, wrapAPIError("get", err)
	}

	summary := toEventSummary(event)
	return &summary, nil
}

// CreateEvent creates a new calendar event. The time range is validated
// before any remote call is issued.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (*EventSummary, error) {
	if !input.End.After(input.Start) {
		return nil, &Error{Op: "create", Kind: KindInvalidInput, Err: ErrMalformedTimeRange}
	}

	tz := input.TimeZone
	if tz == "" {
		tz = "UTC"
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.Start.Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &calendar.EventDateTime{
			DateTime: input.End.Format(time.RFC3339),
			TimeZone: tz,
		},
	}

	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	c.record(ctx, "create", err)
	if err != nil {
		return nil, wrapAPIError("create", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// UpdateEvent applies a partial update to an existing event using
// get-then-patch. When only a new start is given the original duration is
// preserved. The recomputed time range is validated before patching.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, patch EventPatch) (*EventSummary, error) {
	existing, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		c.record(ctx, "update", err)
		return nil, wrapAPIError("update", err)
	}

	current := toEventSummary(existing)
	body := &calendar.Event{}

	if patch.Summary != nil {
		body.Summary = *patch.Summary
	}
	if patch.Description != nil {
		body.Description = *patch.Description
	}
	if patch.Location != nil {
		body.Location = *patch.Location
	}

	newStart, newEnd := current.Start, current.End
	if patch.Start != nil {
		newStart = *patch.Start
		if patch.End == nil {
			// Keep the original duration when rescheduling the start only.
			newEnd = newStart.Add(current.End.Sub(current.Start))
		}
	}
	if patch.End != nil {
		newEnd = *patch.End
	}

	if patch.Start != nil || patch.End != nil {
		if !newEnd.After(newStart) {
			return nil, &Error{Op: "update", Kind: KindInvalidInput, Err: ErrMalformedTimeRange}
		}
		body.Start = &calendar.EventDateTime{DateTime: newStart.Format(time.RFC3339)}
		body.End = &calendar.EventDateTime{DateTime: newEnd.Format(time.RFC3339)}
	}

	updated, err := c.svc.Events.Patch(calendarID, eventID, body).
		Context(ctx).
		SendUpdates("all").
		Do()
	c.record(ctx, "update", err)
	if err != nil {
		return nil, wrapAPIError("update", err)
	}

	summary := toEventSummary(updated)
	return &summary, nil
}

// DeleteEvent cancels a calendar event. notifyAttendees controls whether the
// remote service sends cancellation updates.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string, notifyAttendees bool) error {
	sendUpdates := "none"
	if notifyAttendees {
		sendUpdates = "all"
	}

	err := c.svc.Events.Delete(calendarID, eventID).
		Context(ctx).
		SendUpdates(sendUpdates).
		Do()
	c.record(ctx, "delete", err)
	if err != nil {
		return wrapAPIError("delete", err)
	}
	return nil
}
