// Package storage defines the read-only file-system view of the catalog root.
package storage

import "github.com/starford/namefile/internal/models"

// Provider lists and inspects files under the catalog root. It never
// creates, renames or removes anything.
type Provider interface {
	// List returns metadata for every regular, non-hidden file under dir
	// (relative to the catalog root).
	List(dir string) ([]models.FileMeta, error)
	// Stat returns metadata for the file at path (relative to the catalog root).
	Stat(path string) (models.FileMeta, error)
	// Root returns the absolute catalog root.
	Root() string
}
