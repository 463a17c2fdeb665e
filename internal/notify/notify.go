// Package notify delivers domain events emitted by the services after a
// successful write. Delivery is best effort: a failing sink never fails the
// write that produced the event.
package notify

import (
	"context"
	"log/slog"

	"github.com/mmynk/splitroom/internal/metrics"
)

// EventType names a domain event.
type EventType string

const (
	ParticipantJoined  EventType = "participant.joined"
	ParticipantRemoved EventType = "participant.removed"
	ExpenseCreated     EventType = "expense.created"
	ExpenseUpdated     EventType = "expense.updated"
	ExpenseDeleted     EventType = "expense.deleted"
	RoomLocked         EventType = "room.locked"
	RoomUnlocked       EventType = "room.unlocked"
	SettlementPaid     EventType = "settlement.paid"
)

// Event is a single domain event scoped to a room.
type Event struct {
	Type   EventType
	RoomID string
	// Payload holds event specific attributes, e.g. expense_id.
	Payload map[string]any
}

// Notifier receives domain events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Func adapts an ordinary function to the Notifier interface.
type Func func(ctx context.Context, event Event) error

// Notify calls f(ctx, event).
func (f Func) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Nop discards every event.
var Nop Notifier = Func(func(context.Context, Event) error { return nil })

// LogNotifier writes events to a slog logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the event at info level.
func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	attrs := make([]any, 0, 4+2*len(event.Payload))
	attrs = append(attrs, "type", string(event.Type), "room_id", event.RoomID)
	for k, v := range event.Payload {
		attrs = append(attrs, k, v)
	}
	n.logger.InfoContext(ctx, "Event", attrs...)
	return nil
}

// Counting wraps a notifier and counts events by type.
type Counting struct {
	next   Notifier
	events *metrics.Metrics
}

// NewCounting returns a notifier that increments the events counter before
// delegating to next.
func NewCounting(next Notifier, m *metrics.Metrics) *Counting {
	return &Counting{next: next, events: m}
}

// Notify counts the event and forwards it.
func (c *Counting) Notify(ctx context.Context, event Event) error {
	c.events.Events.WithLabelValues(string(event.Type)).Inc()
	return c.next.Notify(ctx, event)
}
