package index

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/starford/namefile/internal/apperr"
	"github.com/starford/namefile/internal/models"
)

// Filter narrows ListEntries. Zero fields match everything.
type Filter struct {
	Tags   []string // every tag must be present
	Stem   string
	Suffix string
	Limit  int // <= 0 means no limit
	Offset int
	Sort   string // path (default), stem, date, modified
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Snippet string `json:"snippet"`
}

var sortClauses = map[string]string{
	"path":     "f.path ASC",
	"stem":     "f.stem ASC, f.path ASC",
	"date":     "f.date DESC, f.path ASC",
	"modified": "f.mod_time DESC, f.path ASC",
}

const entryColumns = `
	f.path, f.name, f.stem, f.suffix, f.date, f.version, f.size, f.mod_time, f.indexed_at,
	COALESCE((SELECT group_concat(t.tag, ' ') FROM file_tags t WHERE t.path = f.path), '')`

// Fingerprint identifies one observed state of a file. Sync skips files
// whose fingerprint is unchanged.
func Fingerprint(size int64, modTime time.Time) string {
	return fmt.Sprintf("%d:%d", size, modTime.UnixNano())
}

// UpsertEntry inserts or replaces a catalogued file, its tags and its FTS
// row within a transaction. Any unmanaged row for the same path is removed.
func (db *DB) UpsertEntry(e models.Entry) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if e.IndexedAt.IsZero() {
		e.IndexedAt = time.Now().UTC()
	}
	_, err = tx.Exec(`
		INSERT INTO files (path, name, stem, suffix, date, version, size, mod_time, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name       = excluded.name,
			stem       = excluded.stem,
			suffix     = excluded.suffix,
			date       = excluded.date,
			version    = excluded.version,
			size       = excluded.size,
			mod_time   = excluded.mod_time,
			indexed_at = excluded.indexed_at
	`, e.Path, e.Name, e.Stem, e.Suffix, e.Date, e.Version, e.Size, e.ModTime, e.IndexedAt)
	if err != nil {
		return fmt.Errorf("index: upsert entry: %w", err)
	}

	// Replace tags: delete old then bulk insert.
	if _, err := tx.Exec(`DELETE FROM file_tags WHERE path = ?`, e.Path); err != nil {
		return fmt.Errorf("index: clear tags: %w", err)
	}
	if len(e.Tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO file_tags (path, tag) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range e.Tags {
			if _, err := stmt.Exec(e.Path, tag); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, e); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM unmanaged WHERE path = ?`, e.Path); err != nil {
		return fmt.Errorf("index: clear unmanaged: %w", err)
	}

	return tx.Commit()
}

// UpsertUnmanaged records a file whose name does not decode. Any catalogued
// entry for the same path is removed.
func (db *DB) UpsertUnmanaged(u models.Unmanaged) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteEntryTx(tx, u.Path); err != nil {
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO unmanaged (path, name, reason, kind, size, mod_time)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name     = excluded.name,
			reason   = excluded.reason,
			kind     = excluded.kind,
			size     = excluded.size,
			mod_time = excluded.mod_time
	`, u.Path, u.Name, u.Reason, u.Kind, u.Size, u.ModTime)
	if err != nil {
		return fmt.Errorf("index: upsert unmanaged: %w", err)
	}
	return tx.Commit()
}

// DeleteEntry removes a path from the catalog, managed or not.
func (db *DB) DeleteEntry(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteEntryTx(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM unmanaged WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete unmanaged: %w", err)
	}
	return tx.Commit()
}

func deleteEntryTx(tx *sql.Tx, path string) error {
	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM file_tags WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete entry: %w", err)
	}
	return nil
}

// GetEntry returns the catalogued entry at path, or apperr.ErrNotFound.
func (db *DB) GetEntry(path string) (*models.Entry, error) {
	row := db.conn.QueryRow(`SELECT `+entryColumns+` FROM files f WHERE f.path = ?`, path)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: entry %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get entry: %w", err)
	}
	return &e, nil
}

// ListEntries returns one page of entries matching f and the total match count.
func (db *DB) ListEntries(f Filter) ([]models.Entry, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Stem != "" {
		where = append(where, "f.stem = ?")
		args = append(args, f.Stem)
	}
	if f.Suffix != "" {
		where = append(where, "f.suffix = ?")
		args = append(args, f.Suffix)
	}
	if tags := lo.Uniq(lo.Compact(f.Tags)); len(tags) > 0 {
		where = append(where, fmt.Sprintf(`f.path IN (
			SELECT path FROM file_tags WHERE tag IN (%s)
			GROUP BY path HAVING count(DISTINCT tag) = ?)`, placeholders(len(tags))))
		args = append(args, lo.ToAnySlice(tags)...)
		args = append(args, len(tags))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM files f`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count entries: %w", err)
	}

	order, ok := sortClauses[f.Sort]
	if !ok {
		order = sortClauses["path"]
	}
	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`SELECT `+entryColumns+` FROM files f`+clause+
		` ORDER BY `+order+` LIMIT ? OFFSET ?`, append(args, limit, max(f.Offset, 0))...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list entries: %w", err)
	}
	defer rows.Close()

	out := []models.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// EntriesByStem returns every entry with the given stem. An empty suffix
// matches any suffix.
func (db *DB) EntriesByStem(stem, suffix string) ([]models.Entry, error) {
	out, _, err := db.ListEntries(Filter{Stem: stem, Suffix: suffix})
	return out, err
}

// ListUnmanaged returns one page of files whose names do not decode.
func (db *DB) ListUnmanaged(limit, offset int) ([]models.Unmanaged, int, error) {
	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM unmanaged`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count unmanaged: %w", err)
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`
		SELECT path, name, reason, kind, size, mod_time
		FROM unmanaged ORDER BY path LIMIT ? OFFSET ?`, limit, max(offset, 0))
	if err != nil {
		return nil, 0, fmt.Errorf("index: list unmanaged: %w", err)
	}
	defer rows.Close()

	out := []models.Unmanaged{}
	for rows.Next() {
		var u models.Unmanaged
		if err := rows.Scan(&u.Path, &u.Name, &u.Reason, &u.Kind, &u.Size, &u.ModTime); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// Fingerprints returns the stored fingerprint of every indexed path.
func (db *DB) Fingerprints() (map[string]string, error) {
	out := make(map[string]string)
	for _, table := range []string{"files", "unmanaged"} {
		if err := db.collectFingerprints(table, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (db *DB) collectFingerprints(table string, out map[string]string) error {
	rows, err := db.conn.Query(`SELECT path, size, mod_time FROM ` + table)
	if err != nil {
		return fmt.Errorf("index: fingerprints: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			p    string
			size int64
			mod  time.Time
		)
		if err := rows.Scan(&p, &size, &mod); err != nil {
			return err
		}
		out[p] = Fingerprint(size, mod)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (models.Entry, error) {
	var (
		e    models.Entry
		tags string
	)
	err := s.Scan(&e.Path, &e.Name, &e.Stem, &e.Suffix, &e.Date, &e.Version,
		&e.Size, &e.ModTime, &e.IndexedAt, &tags)
	if err != nil {
		return models.Entry{}, err
	}
	e.Tags = strings.Fields(tags)
	slices.Sort(e.Tags)
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
