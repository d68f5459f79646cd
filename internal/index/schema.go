// Package index provides the SQLite-backed catalog of decoded file names with
// optional FTS5 full-text search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	path       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	stem       TEXT NOT NULL,
	suffix     TEXT NOT NULL DEFAULT '',
	date       TEXT NOT NULL DEFAULT '',
	version    TEXT NOT NULL DEFAULT '',
	size       INTEGER NOT NULL DEFAULT 0,
	mod_time   DATETIME NOT NULL,
	indexed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS file_tags (
	path TEXT NOT NULL REFERENCES files(path) ON DELETE CASCADE,
	tag  TEXT NOT NULL,
	UNIQUE(path, tag)
);

CREATE TABLE IF NOT EXISTS unmanaged (
	path     TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	reason   TEXT NOT NULL DEFAULT '',
	kind     TEXT NOT NULL DEFAULT '',
	size     INTEGER NOT NULL DEFAULT 0,
	mod_time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_stem ON files(stem, suffix);
CREATE INDEX IF NOT EXISTS idx_file_tags_tag ON file_tags(tag);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
