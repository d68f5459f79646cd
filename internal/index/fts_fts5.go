//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/namefile/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
			path UNINDEXED,
			name,
			stem,
			tags,
			suffix,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, e models.Entry) error {
	_, _ = tx.Exec(`DELETE FROM files_fts WHERE path = ?`, e.Path)
	_, err := tx.Exec(`INSERT INTO files_fts (path, name, stem, tags, suffix) VALUES (?, ?, ?, ?, ?)`,
		e.Path, e.Name, e.Stem, strings.Join(e.Tags, " "), e.Suffix)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) {
	_, _ = tx.Exec(`DELETE FROM files_fts WHERE path = ?`, path)
}

// ftsQuery quotes every term so that '.' and '-' in file names are not
// read as FTS5 operators.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// Search performs an FTS5 full-text search over names, stems, tags and
// suffixes and returns matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	q := ftsQuery(query)
	if q == "" {
		return []SearchResult{}, nil
	}
	rows, err := db.conn.Query(`
		SELECT path,
		       name,
		       snippet(files_fts, 1, '<b>', '</b>', '...', 16)
		FROM files_fts
		WHERE files_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, q, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Path, &r.Name, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
