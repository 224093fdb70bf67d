package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/calchat/calchat/internal/calendar"
	"github.com/calchat/calchat/internal/llm"
)

// defaultEventMinutes is used when a create request names no end time.
const defaultEventMinutes = 60

// displayLayout is how event times are rendered in tool results.
const displayLayout = "2006-01-02 03:04 PM MST"

// ClientFunc supplies the calendar client a handler runs against. Serve mode
// constructs the client lazily on first use, chat mode closes over an existing
// one via StaticClient.
type ClientFunc func(ctx context.Context) (*calendar.Client, error)

// StaticClient wraps an already-constructed client in a ClientFunc.
func StaticClient(c *calendar.Client) ClientFunc {
	return func(context.Context) (*calendar.Client, error) {
		return c, nil
	}
}

// Toolset holds the calendar tools exposed to the model.
type Toolset struct {
	client     ClientFunc
	calendarID string
	now        func() time.Time
}

// NewToolset creates a calendar toolset operating on the given calendar.
func NewToolset(client ClientFunc, calendarID string) *Toolset {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Toolset{
		client:     client,
		calendarID: calendarID,
		now:        time.Now,
	}
}

// Register adds the four calendar tools to the registry.
func (t *Toolset) Register(r *Registry) error {
	for _, tool := range []Tool{
		t.createEventTool(),
		t.listEventsTool(),
		t.updateEventTool(),
		t.cancelEventTool(),
	} {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

type createEventArgs struct {
	Summary         string   `json:"summary"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	Description     string   `json:"description,omitempty"`
	Location        string   `json:"location,omitempty"`
	Attendees       []string `json:"attendees,omitempty"`
}

func (t *Toolset) createEventTool() Tool {
	return Tool{
		Schema: llm.ToolSchema{
			Name:        "create_event",
			Description: "Create a new event on the user's calendar. Provide either an end time or a duration in minutes; without both the event lasts one hour.",
			Parameters: map[string]any{
				"summary":          map[string]any{"type": "string", "description": "Event title"},
				"start_time":       map[string]any{"type": "string", "description": "Start time: RFC3339, YYYY-MM-DD, or a relative day like 'tomorrow'"},
				"end_time":         map[string]any{"type": "string", "description": "End time, same formats as start_time"},
				"duration_minutes": map[string]any{"type": "integer", "description": "Event length in minutes, used when end_time is absent"},
				"description":      map[string]any{"type": "string", "description": "Longer event description"},
				"location":         map[string]any{"type": "string", "description": "Where the event takes place"},
				"attendees":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Attendee email addresses"},
			},
			Required: []string{"summary", "start_time"},
		},
		Handler: t.createEvent,
	}
}

func (t *Toolset) createEvent(ctx context.Context, raw json.RawMessage) (string, error) {
	var args createEventArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid create_event arguments: %w", err)
	}
	if strings.TrimSpace(args.Summary) == "" {
		return "", fmt.Errorf("summary is required")
	}
	if strings.TrimSpace(args.StartTime) == "" {
		return "", fmt.Errorf("start_time is required")
	}
	if args.DurationMinutes < 0 {
		return "", fmt.Errorf("duration_minutes must be positive, got %d", args.DurationMinutes)
	}

	now := t.now()
	start, err := parseTime(args.StartTime, boundStart, now)
	if err != nil {
		return "", fmt.Errorf("invalid start_time: %w", err)
	}

	var end time.Time
	if args.EndTime != "" {
		end, err = parseTime(args.EndTime, boundEnd, now)
		if err != nil {
			return "", fmt.Errorf("invalid end_time: %w", err)
		}
	} else {
		minutes := args.DurationMinutes
		if minutes == 0 {
			minutes = defaultEventMinutes
		}
		end = start.Add(time.Duration(minutes) * time.Minute)
	}
	if !end.After(start) {
		return "", fmt.Errorf("end time %s is not after start time %s", end.Format(displayLayout), start.Format(displayLayout))
	}

	client, err := t.client(ctx)
	if err != nil {
		return "", err
	}

	created, err := client.CreateEvent(ctx, t.calendarID, calendar.EventInput{
		Summary:     args.Summary,
		Description: args.Description,
		Location:    args.Location,
		Start:       start,
		End:         end,
		Attendees:   args.Attendees,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Created event %q from %s to %s (ID: %s).",
		created.Summary, created.Start.Format(displayLayout), created.End.Format(displayLayout), created.ID)
	if len(created.Attendees) > 0 {
		fmt.Fprintf(&b, " Invitations were sent to %d attendee(s).", len(created.Attendees))
	}
	if created.HTMLLink != "" {
		fmt.Fprintf(&b, " Link: %s", created.HTMLLink)
	}
	return b.String(), nil
}

type listEventsArgs struct {
	TimeMin    string `json:"time_min,omitempty"`
	TimeMax    string `json:"time_max,omitempty"`
	Query      string `json:"query,omitempty"`
	MaxResults int64  `json:"max_results,omitempty"`
}

func (t *Toolset) listEventsTool() Tool {
	return Tool{
		Schema: llm.ToolSchema{
			Name:        "list_events",
			Description: "List upcoming events on the user's calendar, optionally within a time range or matching a free-text query. Returns event IDs needed for updates and cancellations.",
			Parameters: map[string]any{
				"time_min":    map[string]any{"type": "string", "description": "Lower bound: RFC3339, YYYY-MM-DD, or a relative day. Defaults to now"},
				"time_max":    map[string]any{"type": "string", "description": "Upper bound, same formats as time_min"},
				"query":       map[string]any{"type": "string", "description": "Free-text filter over event titles and descriptions"},
				"max_results": map[string]any{"type": "integer", "description": "Maximum events to return"},
			},
		},
		Handler: t.listEvents,
	}
}

func (t *Toolset) listEvents(ctx context.Context, raw json.RawMessage) (string, error) {
	var args listEventsArgs
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return "", fmt.Errorf("invalid list_events arguments: %w", err)
		}
	}

	now := t.now()
	timeMin := now
	if args.TimeMin != "" {
		var err error
		timeMin, err = parseTime(args.TimeMin, boundStart, now)
		if err != nil {
			return "", fmt.Errorf("invalid time_min: %w", err)
		}
	}

	var timeMax time.Time
	if args.TimeMax != "" {
		var err error
		timeMax, err = parseTime(args.TimeMax, boundEnd, now)
		if err != nil {
			return "", fmt.Errorf("invalid time_max: %w", err)
		}
	}

	client, err := t.client(ctx)
	if err != nil {
		return "", err
	}

	result, err := client.ListEvents(ctx, t.calendarID, timeMin, timeMax, args.Query, args.MaxResults)
	if err != nil {
		return "", err
	}

	if len(result.Events) == 0 {
		return "No events found matching your criteria.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d event(s):\n", len(result.Events))
	for _, ev := range result.Events {
		b.WriteString(formatEventLine(ev))
		b.WriteByte('\n')
	}
	if result.More {
		b.WriteString("There are more events; narrow the time range or raise max_results to see them.\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// formatEventLine renders one event for a listing, including the ID the model
// needs to reference the event later.
func formatEventLine(ev calendar.EventSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %q", ev.Summary)
	if ev.AllDay {
		fmt.Fprintf(&b, " all day on %s", ev.Start.Format("2006-01-02"))
	} else {
		fmt.Fprintf(&b, " from %s to %s", ev.Start.Format(displayLayout), ev.End.Format(displayLayout))
	}
	if ev.Location != "" {
		fmt.Fprintf(&b, " at %s", ev.Location)
	}
	fmt.Fprintf(&b, " (ID: %s)", ev.ID)
	return b.String()
}

type updateEventArgs struct {
	EventID         string  `json:"event_id"`
	Summary         *string `json:"summary,omitempty"`
	Description     *string `json:"description,omitempty"`
	Location        *string `json:"location,omitempty"`
	StartTime       string  `json:"start_time,omitempty"`
	EndTime         string  `json:"end_time,omitempty"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
}

func (t *Toolset) updateEventTool() Tool {
	return Tool{
		Schema: llm.ToolSchema{
			Name:        "update_event",
			Description: "Modify an existing event. Only the provided fields change; moving the start without an end keeps the event's duration. Attendees are notified.",
			Parameters: map[string]any{
				"event_id":         map[string]any{"type": "string", "description": "ID of the event to modify, from list_events"},
				"summary":          map[string]any{"type": "string", "description": "New event title"},
				"description":      map[string]any{"type": "string", "description": "New description"},
				"location":         map[string]any{"type": "string", "description": "New location"},
				"start_time":       map[string]any{"type": "string", "description": "New start time"},
				"end_time":         map[string]any{"type": "string", "description": "New end time"},
				"duration_minutes": map[string]any{"type": "integer", "description": "New event length in minutes, used when end_time is absent"},
			},
			Required: []string{"event_id"},
		},
		Handler: t.updateEvent,
	}
}

func (t *Toolset) updateEvent(ctx context.Context, raw json.RawMessage) (string, error) {
	var args updateEventArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid update_event arguments: %w", err)
	}
	if strings.TrimSpace(args.EventID) == "" {
		return "", fmt.Errorf("event_id is required")
	}
	if args.DurationMinutes < 0 {
		return "", fmt.Errorf("duration_minutes must be positive, got %d", args.DurationMinutes)
	}

	patch := calendar.EventPatch{
		Summary:     args.Summary,
		Description: args.Description,
		Location:    args.Location,
	}

	now := t.now()
	if args.StartTime != "" {
		start, err := parseTime(args.StartTime, boundStart, now)
		if err != nil {
			return "", fmt.Errorf("invalid start_time: %w", err)
		}
		patch.Start = &start
	}
	if args.EndTime != "" {
		end, err := parseTime(args.EndTime, boundEnd, now)
		if err != nil {
			return "", fmt.Errorf("invalid end_time: %w", err)
		}
		patch.End = &end
	}

	client, err := t.client(ctx)
	if err != nil {
		return "", err
	}

	// Resolve a bare duration against the event's effective start.
	if args.DurationMinutes > 0 && patch.End == nil {
		start := patch.Start
		if start == nil {
			current, err := client.GetEvent(ctx, t.calendarID, args.EventID)
			if err != nil {
				return "", err
			}
			start = &current.Start
		}
		end := start.Add(time.Duration(args.DurationMinutes) * time.Minute)
		patch.End = &end
	}

	if patch.Summary == nil && patch.Description == nil && patch.Location == nil &&
		patch.Start == nil && patch.End == nil {
		return "", fmt.Errorf("nothing to update; provide at least one field")
	}

	updated, err := client.UpdateEvent(ctx, t.calendarID, args.EventID, patch)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Updated event %q, now from %s to %s (ID: %s). Attendees were notified.",
		updated.Summary, updated.Start.Format(displayLayout), updated.End.Format(displayLayout), updated.ID), nil
}

type cancelEventArgs struct {
	EventID         string `json:"event_id"`
	NotifyAttendees *bool  `json:"notify_attendees,omitempty"`
}

func (t *Toolset) cancelEventTool() Tool {
	return Tool{
		Schema: llm.ToolSchema{
			Name:        "cancel_event",
			Description: "Cancel (delete) an event on the user's calendar. Attendees are notified unless notify_attendees is false.",
			Parameters: map[string]any{
				"event_id":         map[string]any{"type": "string", "description": "ID of the event to cancel, from list_events"},
				"notify_attendees": map[string]any{"type": "boolean", "description": "Whether to send cancellation emails, default true"},
			},
			Required: []string{"event_id"},
		},
		Handler: t.cancelEvent,
	}
}

func (t *Toolset) cancelEvent(ctx context.Context, raw json.RawMessage) (string, error) {
	var args cancelEventArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid cancel_event arguments: %w", err)
	}
	if strings.TrimSpace(args.EventID) == "" {
		return "", fmt.Errorf("event_id is required")
	}

	notify := true
	if args.NotifyAttendees != nil {
		notify = *args.NotifyAttendees
	}

	client, err := t.client(ctx)
	if err != nil {
		return "", err
	}

	if err := client.DeleteEvent(ctx, t.calendarID, args.EventID, notify); err != nil {
		return "", err
	}

	if notify {
		return fmt.Sprintf("Cancelled event %s. Attendees were notified.", args.EventID), nil
	}
	return fmt.Sprintf("Cancelled event %s.", args.EventID), nil
}
