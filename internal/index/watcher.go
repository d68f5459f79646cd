package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/namefile/internal/models"
	"github.com/starford/namefile/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
type EventCallback func(kind models.ChangeKind, path string)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the catalog root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful index mutation.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes stale
// index entries whose files no longer exist on disk.
func Watch(ctx context.Context, db Catalog, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	root := store.Root()
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind models.ChangeKind, rel string) {
		if cb != nil {
			cb(kind, rel)
		}
	}

	// reconcileTimer is used to debounce rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, store, logger, notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name
			if storage.IsHidden(filepath.Base(absPath)) {
				continue
			}

			// New directories: add to watcher and index their contents.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					indexNewDir(db, store, absPath, logger, notify)
					continue
				}
			}

			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				meta, statErr := store.Stat(rel)
				if statErr != nil {
					logger.Debug("watcher: stat failed", slog.String("path", rel), slog.String("error", statErr.Error()))
					continue
				}
				if _, idxErr := IndexFile(db, meta); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
					continue
				}
				kind := models.ChangeUpdated
				if ev.Op&fsnotify.Create != 0 {
					kind = models.ChangeCreated
				}
				logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", string(kind)))
				notify(kind, rel)

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteEntry(rel); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				notify(models.ChangeDeleted, rel)
				// A removed directory takes its files with it.
				scheduleReconcile()

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new
				// path will arrive as a separate Create event (if it
				// stays within a watched dir).
				if delErr := db.DeleteEntry(rel); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("path", rel))
					notify(models.ChangeDeleted, rel)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes index rows without a file on disk and indexes on-disk
// files that are missing or changed.
func reconcile(db Catalog, store storage.Provider, logger *slog.Logger, notify EventCallback) {
	known, err := db.Fingerprints()
	if err != nil {
		logger.Warn("reconcile: fingerprints failed", slog.String("error", err.Error()))
		return
	}

	metas, err := store.List("")
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
	}

	for p := range known {
		if _, ok := disk[p]; !ok {
			if delErr := db.DeleteEntry(p); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("path", p))
				notify(models.ChangeDeleted, p)
			}
		}
	}

	for _, m := range metas {
		prev, seen := known[m.Path]
		if seen && prev == Fingerprint(m.Size, m.ModTime) {
			continue
		}
		if _, idxErr := IndexFile(db, m); idxErr == nil {
			logger.Debug("reconcile: indexed", slog.String("path", m.Path))
			kind := models.ChangeUpdated
			if !seen {
				kind = models.ChangeCreated
			}
			notify(kind, m.Path)
		}
	}
}

// indexNewDir indexes the files found in a newly created directory.
func indexNewDir(db Catalog, store storage.Provider, dirPath string, logger *slog.Logger, notify EventCallback) {
	rel, err := filepath.Rel(store.Root(), dirPath)
	if err != nil {
		return
	}
	metas, err := store.List(filepath.ToSlash(rel))
	if err != nil {
		logger.Warn("watcher: list new dir failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	for _, m := range metas {
		if _, idxErr := IndexFile(db, m); idxErr == nil {
			logger.Debug("watcher: indexed from new dir", slog.String("path", m.Path))
			notify(models.ChangeCreated, m.Path)
		}
	}
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && storage.IsHidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
