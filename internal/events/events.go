package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types understood by the task layer.
const (
	// EventTypeStructureAnalysis requests background analysis of a
	// knowledge structure (base, surmise relation, discriminativity).
	EventTypeStructureAnalysis = "structure_analysis"
)

// TaskRequestEvent represents a request to create a background task. It
// carries everything the task layer needs without creating a direct
// dependency from services onto the task package.
type TaskRequestEvent struct {
	// ID uniquely identifies this event.
	ID uuid.UUID `json:"id"`

	// Type names the task type that should be created.
	Type string `json:"type"`

	// Payload holds the task-specific data serialized as JSON.
	Payload json.RawMessage `json:"payload"`

	// CreatedAt records when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewTaskRequestEvent builds a TaskRequestEvent of the given type, serializing
// the payload to JSON.
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler is implemented by components that consume events.
type EventHandler interface {
	// HandleEvent processes the event within the provided context.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter is implemented by components that publish events, letting
// services announce work without knowing who picks it up.
type EventEmitter interface {
	// EmitEvent publishes the event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
