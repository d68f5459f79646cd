package index

import (
	"log/slog"
	"strings"
	"time"

	"github.com/starford/namefile/internal/models"
	"github.com/starford/namefile/internal/storage"
	"github.com/starford/namefile/pkg/namefile"
)

// Sync walks the catalog root and brings the index up to date:
//   - new/changed files are decoded and upserted as entries or unmanaged rows
//   - files removed from disk are deleted from the index
func Sync(db Catalog, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	known, err := db.Fingerprints()
	if err != nil {
		return err
	}

	var managed, unmanaged, removed int
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if known[m.Path] == Fingerprint(m.Size, m.ModTime) {
			continue
		}

		ok, err := IndexFile(db, m)
		switch {
		case err != nil:
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		case ok:
			managed++
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		default:
			unmanaged++
			logger.Debug("sync: unmanaged", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range known {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteEntry(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				removed++
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	logger.Info("sync: done",
		slog.Int("files", len(metas)),
		slog.Int("indexed", managed),
		slog.Int("unmanaged", unmanaged),
		slog.Int("removed", removed))
	return nil
}

// IndexFile decodes the base name of m and stores it as an entry, or as an
// unmanaged row when the name does not follow the convention. It reports
// whether the name decoded.
func IndexFile(db Catalog, m models.FileMeta) (bool, error) {
	rec, err := namefile.Decode(m.Name)
	if err != nil {
		return false, db.UpsertUnmanaged(models.Unmanaged{
			Path:    m.Path,
			Name:    m.Name,
			Reason:  Reason(err),
			Kind:    namefile.ErrorKind(err),
			Size:    m.Size,
			ModTime: m.ModTime,
		})
	}
	return true, db.UpsertEntry(EntryFromRecord(rec, m))
}

// EntryFromRecord combines a decoded record with what storage knows about
// the file.
func EntryFromRecord(rec namefile.Record, m models.FileMeta) models.Entry {
	f := rec.Fields()
	return models.Entry{
		Path:      m.Path,
		Name:      m.Name,
		Stem:      f.Stem,
		Suffix:    f.Suffix,
		Tags:      f.Tags,
		Date:      f.Date,
		Version:   f.Version,
		Size:      m.Size,
		ModTime:   m.ModTime,
		IndexedAt: time.Now().UTC(),
	}
}

// Reason flattens a decode error to one line.
func Reason(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", ": ")
}
