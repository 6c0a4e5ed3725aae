// Package local provides an in-memory implementation of history.Driver for
// local development and tests.
package local

import (
	"context"
	"sync"
	"time"

	"github.com/petalhealth/petal/pkg/history"
)

// Driver implements history.Driver using in-process data structures.
type Driver struct {
	mu     sync.RWMutex
	nextID int64

	// turns maps user id -> append-ordered turns.
	turns map[string][]history.Turn
}

// NewDriver creates an empty in-memory history driver.
func NewDriver() *Driver {
	return &Driver{turns: make(map[string][]history.Turn)}
}

// Append stores a turn for the user and returns its assigned id.
func (d *Driver) Append(_ context.Context, userID string, turn history.Turn) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	turn.ID = d.nextID
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	d.turns[userID] = append(d.turns[userID], turn)
	return turn.ID, nil
}

// Recent returns up to n of the user's most recent turns, oldest-first.
func (d *Driver) Recent(_ context.Context, userID string, n int) ([]history.Turn, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	all := d.turns[userID]
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}

	out := make([]history.Turn, len(all))
	copy(out, all)
	return out, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

// Ensure Driver implements history.Driver
var _ history.Driver = (*Driver)(nil)
