package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/petalhealth/petal/pkg/history"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnPersisted is emitted after a conversation turn is persisted.
	EventTypeTurnPersisted = "petal.turn.persisted"

	// EventTypeCorpusIndexed is emitted after a corpus indexing run completes.
	EventTypeCorpusIndexed = "petal.corpus.indexed"
)

// TurnPersistedEvent is a transport-neutral event payload for a persisted turn.
type TurnPersistedEvent struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	EventID       string       `json:"event_id"`
	EmittedAt     time.Time    `json:"emitted_at"`
	UserID        string       `json:"user_id"`
	Turn          history.Turn `json:"turn"`
}

// NewTurnEvent builds a v1 turn-persisted event for a stored turn.
func NewTurnEvent(userID string, turn history.Turn) *TurnPersistedEvent {
	return &TurnPersistedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnPersisted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		UserID:        userID,
		Turn:          turn,
	}
}

// CorpusIndexedEvent is a transport-neutral event payload for a completed
// corpus indexing run.
type CorpusIndexedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	Root          string    `json:"root"`
	Documents     int       `json:"documents"`
	Chunks        int       `json:"chunks"`
	Skipped       int       `json:"skipped"`
	Rebuild       bool      `json:"rebuild"`
}

// NewCorpusEvent builds a v1 corpus-indexed event for an indexing run.
func NewCorpusEvent(root string, documents, chunks, skipped int, rebuild bool) *CorpusIndexedEvent {
	return &CorpusIndexedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeCorpusIndexed,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Root:          root,
		Documents:     documents,
		Chunks:        chunks,
		Skipped:       skipped,
		Rebuild:       rebuild,
	}
}
