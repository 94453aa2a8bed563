package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "REQUEST_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the shared implementation the constructors below build on.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeRequestAccepted  = "REQUEST_ACCEPTED"
	TypeRequestRejected  = "REQUEST_REJECTED"
	TypeRequestCompleted = "REQUEST_COMPLETED"
)

// NewRequestAccepted fires when a question passed validation and entered a
// pipeline route.
func NewRequestAccepted(conversationID string, route int) Event {
	return BaseEvent{
		Type: TypeRequestAccepted,
		Data: map[string]interface{}{
			"conversation_id": conversationID,
			"route":           route,
		},
		OccurredAt: time.Now(),
	}
}

// NewRequestRejected fires when validation turned a question away.
func NewRequestRejected(conversationID, reason string) Event {
	return BaseEvent{
		Type: TypeRequestRejected,
		Data: map[string]interface{}{
			"conversation_id": conversationID,
			"reason":          reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewRequestCompleted fires when the answer stream finished.
func NewRequestCompleted(conversationID string, route int, answerLength int) Event {
	return BaseEvent{
		Type: TypeRequestCompleted,
		Data: map[string]interface{}{
			"conversation_id": conversationID,
			"route":           route,
			"answer_length":   answerLength,
		},
		OccurredAt: time.Now(),
	}
}
