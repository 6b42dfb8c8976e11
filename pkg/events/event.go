package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

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

const TypeSessionCompleted = "SESSION_COMPLETED"

// NewSessionCompleted builds the event emitted once a survey session is
// finalized, whether it ran to the question limit or was stopped early.
func NewSessionCompleted(sessionID, email string, questionsCount int, categories []string, emergency bool) Event {
	return BaseEvent{
		Type: TypeSessionCompleted,
		Data: map[string]interface{}{
			"session_id":      sessionID,
			"email":           email,
			"questions_count": questionsCount,
			"categories":      categories,
			"emergency":       emergency,
		},
		OccurredAt: time.Now().UTC(),
	}
}
