// Package db owns the local SQLite state database: connection setup, the
// schema, and the in-memory test fixture. The seeded item store and the
// durable session record both live in this one database.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open connects to the SQLite database at path and applies the
// per-connection pragmas. WAL plus a busy timeout keeps concurrent CLI
// invocations from tripping over each other; foreign keys are off in
// SQLite unless switched on per connection.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}

	return conn, nil
}
