package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names a person lifecycle change.
type EventType string

// Person lifecycle event types.
const (
	PersonCreated      EventType = "person.created"
	PersonUpdated      EventType = "person.updated"
	PersonDeleted      EventType = "person.deleted"
	PersonPhotoUpdated EventType = "person.photo_updated"
)

// PersonEvent records that a person was written or removed.
// It carries only the ID; handlers that need the record load it themselves.
type PersonEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type     EventType `json:"type"`
	PersonID int64     `json:"person_id"`

	// OccurredAt is the request time at which the change was made
	OccurredAt time.Time `json:"occurred_at"`
}

// NewPersonEvent creates a PersonEvent with a fresh ID.
func NewPersonEvent(eventType EventType, personID int64, occurredAt time.Time) *PersonEvent {
	return &PersonEvent{
		ID:         uuid.New(),
		Type:       eventType,
		PersonID:   personID,
		OccurredAt: occurredAt.UTC(),
	}
}

// ChangesStats reports whether the event can change dashboard aggregates.
// Photo updates do not touch any aggregated column.
func (e *PersonEvent) ChangesStats() bool {
	return e.Type != PersonPhotoUpdated
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *PersonEvent) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event *PersonEvent) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *PersonEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *PersonEvent) error
}
