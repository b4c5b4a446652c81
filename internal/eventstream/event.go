package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnAppended is emitted after a turn is appended to the conversation log.
	EventTypeTurnAppended = "mnemo.turn.appended"
)

// TurnAppendedEvent is the transport-neutral payload for one logged turn.
type TurnAppendedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	UserID        string    `json:"user_id"`
	Role          string    `json:"role"`
	Message       string    `json:"message"`
	TS            string    `json:"ts"`
}

// NewTurnAppendedEvent wraps one log line in an envelope with a fresh event id.
func NewTurnAppendedEvent(userID, role, message, ts string) *TurnAppendedEvent {
	return &TurnAppendedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnAppended,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		UserID:        userID,
		Role:          role,
		Message:       message,
		TS:            ts,
	}
}

// EventTypeHistoryCleared is emitted after a user's turns are compacted out of the log.
const EventTypeHistoryCleared = "mnemo.history.cleared"

// HistoryClearedEvent tells consumers to drop the turns they hold for a user.
type HistoryClearedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	UserID        string    `json:"user_id"`
	Removed       int       `json:"removed"`
}

func NewHistoryClearedEvent(userID string, removed int) *HistoryClearedEvent {
	return &HistoryClearedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeHistoryCleared,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		UserID:        userID,
		Removed:       removed,
	}
}
