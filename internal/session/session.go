// Package session keeps the minimal auth record in durable client storage:
// one JSON document under a fixed key in the local settings table. Absence,
// a corrupt record, or an expired token all read back as the anonymous
// state, never as an error the UI has to handle.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"lostfound/internal/auth"
	"lostfound/internal/model"
)

// settingsKey is the fixed storage key for the serialized session.
const settingsKey = "session"

// Store reads and writes the session record.
type Store struct {
	db *sql.DB
}

// New wraps an opened state database (schema already ensured).
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load returns the current session, or nil when anonymous. A record that
// cannot be parsed, or whose token has visibly expired, is cleared and
// treated as logged-out rather than surfaced as an error.
func (s *Store) Load(ctx context.Context) *model.Session {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, settingsKey,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		slog.Warn("reading stored session", "error", err)
		return nil
	}

	var sess model.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || sess.UserID == "" {
		s.Clear(ctx)
		return nil
	}
	if auth.Expired(sess.Token) {
		s.Clear(ctx)
		return nil
	}
	return &sess
}

// Save stores the session record, replacing any previous one.
func (s *Store) Save(ctx context.Context, sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`,
		settingsKey, string(data),
	)
	return err
}

// Clear removes the stored session unconditionally.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM settings WHERE key = ?`, settingsKey,
	)
	return err
}
