package index

import "github.com/starford/namefile/internal/models"

// Catalog defines the interface for catalog index operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Catalog interface {
	UpsertEntry(e models.Entry) error
	UpsertUnmanaged(u models.Unmanaged) error
	DeleteEntry(path string) error
	GetEntry(path string) (*models.Entry, error)
	ListEntries(f Filter) ([]models.Entry, int, error)
	EntriesByStem(stem, suffix string) ([]models.Entry, error)
	ListUnmanaged(limit, offset int) ([]models.Unmanaged, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Fingerprints() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
