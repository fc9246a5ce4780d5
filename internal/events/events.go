package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the attempt ledger and feedback link.
const (
	TypeAttemptCreated        = "attempt.created"
	TypeAttemptStatusAdvanced = "attempt.status_advanced"
	TypeAttemptDeleted        = "attempt.deleted"
	TypeFeedbackAttached      = "feedback.attached"
	TypeFeedbackDeleted       = "feedback.deleted"
)

// Event is a record of something that happened to an aggregate.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event of eventType with payload serialized as JSON.
func NewEvent(eventType string, payload interface{}, now time.Time) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   raw,
		CreatedAt: now.UTC(),
	}, nil
}

// AttemptPayload describes an attempt event.
type AttemptPayload struct {
	AttemptID  int64     `json:"attempt_id"`
	UserID     uuid.UUID `json:"user_id"`
	ExamID     int64     `json:"exam_id"`
	AttemptNo  int       `json:"attempt_no"`
	Status     string    `json:"status"`
	FromStatus string    `json:"from_status,omitempty"`
}

// FeedbackPayload describes a feedback event.
type FeedbackPayload struct {
	FeedbackID int64 `json:"feedback_id"`
	AttemptID  int64 `json:"attempt_id,omitempty"`
	// ClearedAttempts is set on deletion: how many attempts lost the reference.
	ClearedAttempts int64 `json:"cleared_attempts,omitempty"`
}

// EventHandler processes events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter publishes events to handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
