package db

import (
	"database/sql"
	"fmt"
)

// schema is the full local database schema: the item/user tables backing
// the injectable local data-access variant, and a settings table used as
// durable key/value client storage (session record, signing secret).
//
// Identifiers are TEXT because the backend issues UUID primary keys and
// the local variant synthesizes matching ones.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL,
    name          TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'USER' CHECK (role IN ('USER', 'ADMIN')),
    password_hash TEXT NOT NULL DEFAULT '',
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE TABLE IF NOT EXISTS items (
    id             TEXT PRIMARY KEY,
    title          TEXT NOT NULL,
    description    TEXT NOT NULL DEFAULT '',
    category       TEXT NOT NULL,
    status         TEXT NOT NULL CHECK (status IN ('LOST', 'FOUND')),
    location       TEXT,
    event_date     DATETIME,
    image_url      TEXT,
    contact_info   TEXT,
    reporter_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    is_flagged     INTEGER NOT NULL DEFAULT 0,
    flagged_reason TEXT,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
CREATE INDEX IF NOT EXISTS idx_items_flagged ON items(is_flagged);
CREATE INDEX IF NOT EXISTS idx_items_reporter ON items(reporter_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
