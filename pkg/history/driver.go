// Package history provides a pluggable store for per-user conversation turns.
//
// Turns are append-only and strictly ordered by a monotonic id per user.
// Concurrent writes from the same user (e.g., a double-submit) are not
// deduplicated here; callers needing that should supply an idempotency key at
// the application layer.
package history

import (
	"context"
	"time"
)

// Roles a persisted turn can carry.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is a single persisted conversation turn.
type Turn struct {
	// ID is the monotonic per-store identifier. Assigned on append.
	ID int64 `json:"id"`

	// Role is "user", "assistant", or "system".
	Role string `json:"role"`

	// Content is the full turn text.
	Content string `json:"content"`

	// Summary is the cached one-line compression of Content, computed once
	// when the turn is created. Empty when summarization was unavailable.
	Summary string `json:"summary,omitempty"`

	// CreatedAt is the append timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// Driver handles storage and retrieval of conversation turns.
type Driver interface {
	// Append stores a turn for the user and returns its assigned id.
	Append(ctx context.Context, userID string, turn Turn) (int64, error)

	// Recent returns up to n of the user's most recent turns, ordered
	// oldest-first.
	Recent(ctx context.Context, userID string, n int) ([]Turn, error)

	// Close releases driver resources.
	Close() error
}
