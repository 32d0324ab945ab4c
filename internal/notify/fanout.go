package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"wishlist/internal/metrics"
	"wishlist/internal/models"
	"wishlist/internal/realtime"
)

// Event is a live broadcast waiting for its transaction to commit.
type Event struct {
	Room    string
	Name    string
	Payload map[string]any
}

// Outbox collects the side effects of one mutation.
type Outbox struct {
	notifications []models.Notification
	events        []Event
}

// Notify queues durable notifications.
func (o *Outbox) Notify(ns ...models.Notification) {
	o.notifications = append(o.notifications, ns...)
}

// Broadcast queues a live event for the list's room.
func (o *Outbox) Broadcast(listID uuid.UUID, event string, payload map[string]any) {
	o.events = append(o.events, Event{Room: realtime.RoomKey(listID), Name: event, Payload: payload})
}

// Notifications returns the queued notifications.
func (o *Outbox) Notifications() []models.Notification { return o.notifications }

// Events returns the queued events.
func (o *Outbox) Events() []Event { return o.events }

// Writer stores notifications.
type Writer interface {
	CreateNotifications(ctx context.Context, ns []models.Notification) error
}

// Publisher delivers live events to a room.
type Publisher interface {
	Publish(room, event string, payload map[string]any)
}

// Fanout splits an outbox into its durable and live halves.
type Fanout struct {
	pub    Publisher
	logger *slog.Logger
}

// NewFanout creates a fanout. pub may be nil when nothing is listening.
func NewFanout(pub Publisher, logger *slog.Logger) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{pub: pub, logger: logger}
}

// Persist writes the queued notifications. Call it inside the mutation's
// transaction so they roll back with it.
func (f *Fanout) Persist(ctx context.Context, w Writer, o *Outbox) error {
	if len(o.notifications) == 0 {
		return nil
	}
	return w.CreateNotifications(ctx, o.notifications)
}

// Deliver publishes the queued events. Call it only after commit.
func (f *Fanout) Deliver(o *Outbox) {
	for _, n := range o.notifications {
		metrics.RecordNotification(n.Kind)
	}
	if f.pub == nil {
		return
	}
	for _, e := range o.events {
		f.logger.Debug("broadcasting", "room", e.Room, "event", e.Name)
		f.pub.Publish(e.Room, e.Name, e.Payload)
	}
}
