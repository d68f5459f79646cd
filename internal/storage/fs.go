package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/namefile/internal/apperr"
	"github.com/starford/namefile/internal/models"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the catalog root
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute catalog root.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s: %w", rel, apperr.ErrInvalidInput)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	// Ensure the resolved path is still under root.
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("storage: path escapes catalog root: %s: %w", rel, apperr.ErrInvalidInput)
	}
	return abs, nil
}

// IsHidden reports whether a base name is a dotfile.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// List walks dir (relative to root) and returns metadata for every regular
// file. Hidden files and directories are skipped.
func (f *FS) List(dir string) ([]models.FileMeta, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []models.FileMeta
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if IsHidden(d.Name()) && p != base {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, f.meta(p, info))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Stat returns metadata for a single regular file.
func (f *FS) Stat(rel string) (models.FileMeta, error) {
	abs, err := f.safePath(rel)
	if err != nil {
		return models.FileMeta{}, err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return models.FileMeta{}, fmt.Errorf("storage: stat %s: %w", rel, apperr.ErrNotFound)
	}
	if err != nil {
		return models.FileMeta{}, fmt.Errorf("storage: stat %s: %w", rel, err)
	}
	if !info.Mode().IsRegular() {
		return models.FileMeta{}, fmt.Errorf("storage: %s is not a regular file: %w", rel, apperr.ErrInvalidInput)
	}
	return f.meta(abs, info), nil
}

func (f *FS) meta(abs string, info fs.FileInfo) models.FileMeta {
	rel, _ := filepath.Rel(f.root, abs)
	rel = filepath.ToSlash(rel)
	return models.FileMeta{
		Path:    rel,
		Name:    path.Base(rel),
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
	}
}
