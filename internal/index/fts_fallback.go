//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/namefile/internal/models"
)

// likeEscaper makes '%' and '_' in a query match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the files and file_tags tables.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ models.Entry) error {
	// Everything searchable is already stored in files and file_tags.
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT f.path, f.name, f.name
		FROM files f
		WHERE f.name LIKE ? ESCAPE '\' OR f.stem LIKE ? ESCAPE '\' OR f.suffix LIKE ? ESCAPE '\'
		   OR EXISTS (SELECT 1 FROM file_tags t WHERE t.path = f.path AND t.tag LIKE ? ESCAPE '\')
		ORDER BY f.path
		LIMIT ?
	`, like, like, like, like, limit)
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
