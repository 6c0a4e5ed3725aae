// Package memory provides an in-process vector.Driver implementation using
// brute-force cosine similarity. It backs local development and tests; the
// production path is the qdrant driver.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/petalhealth/petal/pkg/vector"
)

// Driver implements vector.Driver with in-process data structures.
type Driver struct {
	mu         sync.RWMutex
	created    bool
	dimensions uint64

	// entries preserves insertion order so equal-score results tie-break
	// deterministically.
	entries []vector.Entry
	byID    map[string]int
}

// NewDriver creates an empty in-memory vector driver.
func NewDriver() *Driver {
	return &Driver{byID: make(map[string]int)}
}

// EnsureCollection initializes the collection dimension on first use.
func (d *Driver) EnsureCollection(_ context.Context, dimensions uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.created {
		d.created = true
		d.dimensions = dimensions
	}
	return nil
}

// Recreate drops all entries and resets the collection dimension.
func (d *Driver) Recreate(_ context.Context, dimensions uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.created = true
	d.dimensions = dimensions
	d.entries = nil
	d.byID = make(map[string]int)
	return nil
}

// Upsert stores entries, replacing any with a matching ID in place.
func (d *Driver) Upsert(_ context.Context, entries []vector.Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, e := range entries {
		if d.created && uint64(len(e.Vector)) != d.dimensions {
			return fmt.Errorf("%w: entry %s has %d dimensions, collection has %d",
				vector.ErrDimensionMismatch, e.ID, len(e.Vector), d.dimensions)
		}
		if idx, ok := d.byID[e.ID]; ok {
			d.entries[idx] = e
			continue
		}
		d.byID[e.ID] = len(d.entries)
		d.entries = append(d.entries, e)
	}
	return nil
}

// Search scores every entry against the query vector and returns the top
// results by descending cosine similarity. Ties keep insertion order.
func (d *Driver) Search(_ context.Context, vec []float32, limit uint64) ([]vector.ScoredPassage, error) {
	if limit == 0 {
		limit = 5
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	scored := make([]vector.ScoredPassage, 0, len(d.entries))
	for _, e := range d.entries {
		scored = append(scored, vector.ScoredPassage{
			Score:   cosine(vec, e.Vector),
			Passage: e.Passage,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if uint64(len(scored)) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

// cosine computes cosine similarity between two vectors. Mismatched or zero
// vectors score zero rather than erroring; search is best-effort over
// whatever is stored.
func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// Ensure Driver implements vector.Driver
var _ vector.Driver = (*Driver)(nil)
