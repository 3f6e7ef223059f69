// CLAUDE:SUMMARY SQLite-backed session history: append, list oldest-first, delete by timestamp, clear.
// Package history persists captured sessions so exports can cover the
// full saved timeline instead of only the current capture.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hazyhaar/tabsnap/dbopen"
	"github.com/hazyhaar/tabsnap/idgen"
	"github.com/hazyhaar/tabsnap/session"
)

// ErrNotFound is returned when a delete targets a timestamp with no
// stored sessions.
var ErrNotFound = errors.New("history: no session with that timestamp")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	timestamp  TEXT NOT NULL,
	iso_date   TEXT NOT NULL,
	tabs       TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
CREATE INDEX IF NOT EXISTS idx_sessions_timestamp ON sessions(timestamp);
`

// Store persists sessions in SQLite. Safe for concurrent use.
type Store struct {
	db    *sql.DB
	newID idgen.Generator
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return New(db), nil
}

// New wraps an already-opened database. The caller owns db and must
// have applied the schema (Open does both).
func New(db *sql.DB) *Store {
	return &Store{db: db, newID: idgen.Default}
}

// Schema returns the store's table definition, for callers that open
// the database themselves (tests use dbopen.OpenMemory with it).
func Schema() string { return schema }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Append stores one captured session. Tabs are serialized as JSON in a
// single column; the row ID is generated, not derived from the
// timestamp, so two captures in the same second both persist.
func (s *Store) Append(ctx context.Context, sess session.Session) error {
	tabs, err := json.Marshal(sess.Tabs)
	if err != nil {
		return fmt.Errorf("history: marshal tabs: %w", err)
	}
	_, err = dbopen.Exec(ctx, s.db,
		`INSERT INTO sessions (id, timestamp, iso_date, tabs) VALUES (?, ?, ?, ?)`,
		s.newID(), sess.Timestamp, sess.ISODate, string(tabs))
	if err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// List returns all stored sessions, oldest first. Rows whose tabs
// column fails to parse are skipped rather than failing the whole
// listing.
func (s *Store) List(ctx context.Context) ([]session.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, iso_date, tabs FROM sessions ORDER BY iso_date ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []session.Session
	for rows.Next() {
		var sess session.Session
		var tabs string
		if err := rows.Scan(&sess.Timestamp, &sess.ISODate, &tabs); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(tabs), &sess.Tabs); err != nil {
			continue
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return out, nil
}

// Count reports the number of stored sessions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("history: count: %w", err)
	}
	return n, nil
}

// DeleteByTimestamp removes every session whose display timestamp
// matches ts. Timestamps have second precision, so a collision removes
// all colliding rows. Returns ErrNotFound when nothing matched.
func (s *Store) DeleteByTimestamp(ctx context.Context, ts string) error {
	res, err := dbopen.Exec(ctx, s.db, `DELETE FROM sessions WHERE timestamp = ?`, ts)
	if err != nil {
		return fmt.Errorf("history: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("history: delete: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes all stored sessions.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := dbopen.Exec(ctx, s.db, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	return nil
}
