// Package vector provides interfaces and implementations for passage storage
// and similarity search.
package vector

import "context"

// Metadata carries the provenance of a passage.
type Metadata struct {
	// Source is the originating document path or identifier.
	Source string `json:"source"`

	// Page is the page within the source, when attributable.
	Page string `json:"page,omitempty"`

	// Title is a human-readable document title, when known.
	Title string `json:"title,omitempty"`
}

// Passage is a bounded span of source text stored with provenance metadata.
// Passages are immutable once created; many passages may share a Source but
// each is owned exclusively by the index entry that backs it.
type Passage struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Entry is a stored (vector, payload) pair. The vector dimension must equal
// the collection dimension for the collection's lifetime.
type Entry struct {
	// ID is a unique point identifier (a UUID string).
	ID string

	// Vector is the embedding of the passage text.
	Vector []float32

	// Passage is the payload stored alongside the vector.
	Passage Passage
}

// ScoredPassage is a search result with its similarity score. It is
// ephemeral: produced per query, never persisted.
type ScoredPassage struct {
	Score   float32
	Passage Passage
}

// Driver handles storage and retrieval of passage embeddings.
//
// Recreate is the only destructive operation and must be invoked explicitly;
// EnsureCollection creates the collection only when it does not yet exist
// (first-run bootstrap) and never drops data.
type Driver interface {
	// EnsureCollection creates the collection with the given vector
	// dimension if it does not exist. Existing collections are left as-is.
	EnsureCollection(ctx context.Context, dimensions uint64) error

	// Recreate drops and recreates the collection with the given vector
	// dimension. All stored entries are lost.
	Recreate(ctx context.Context, dimensions uint64) error

	// Upsert stores entries. An entry with an existing ID is replaced.
	Upsert(ctx context.Context, entries []Entry) error

	// Search returns up to limit passages ordered by descending score.
	// Score ties preserve insertion order.
	Search(ctx context.Context, vector []float32, limit uint64) ([]ScoredPassage, error)

	// Close releases any resources held by the driver.
	Close() error
}
