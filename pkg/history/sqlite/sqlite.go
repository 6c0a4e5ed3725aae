// Package sqlite provides a SQLite-backed implementation of history.Driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// SQLite driver registration.
	_ "github.com/mattn/go-sqlite3"

	"github.com/petalhealth/petal/pkg/history"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    TEXT NOT NULL,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	summary    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_chat_messages_user ON chat_messages(user_id, id);
`

// Driver implements history.Driver on a SQLite database.
type Driver struct {
	db *sql.DB
}

// NewDriver opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for an ephemeral store.
func NewDriver(path string) (*Driver, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// Append stores a turn for the user and returns its assigned id.
func (d *Driver) Append(ctx context.Context, userID string, turn history.Turn) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO chat_messages (user_id, role, content, summary) VALUES (?, ?, ?, ?)`,
		userID, turn.Role, turn.Content, turn.Summary,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting turn: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted id: %w", err)
	}
	return id, nil
}

// Recent returns up to n of the user's most recent turns, oldest-first.
func (d *Driver) Recent(ctx context.Context, userID string, n int) ([]history.Turn, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, role, content, summary, created_at FROM (
			SELECT id, role, content, summary, created_at
			FROM chat_messages WHERE user_id = ?
			ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		userID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var turns []history.Turn
	for rows.Next() {
		var t history.Turn
		if err := rows.Scan(&t.ID, &t.Role, &t.Content, &t.Summary, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}

	return turns, nil
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}

// Ensure Driver implements history.Driver
var _ history.Driver = (*Driver)(nil)
