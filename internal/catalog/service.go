// Package catalog coordinates the naming codec, the read-only storage view
// and the SQLite index.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/namefile/internal/apperr"
	"github.com/starford/namefile/internal/index"
	"github.com/starford/namefile/internal/models"
	"github.com/starford/namefile/internal/storage"
	"github.com/starford/namefile/pkg/namefile"
)

// EncodeRequest describes a record to encode. Date uses YYYY-MM-DD; Today
// stamps the current day instead.
type EncodeRequest struct {
	Stem    string   `json:"stem" yaml:"stem"`
	Suffix  string   `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Date    string   `json:"date,omitempty" yaml:"date,omitempty"`
	Today   bool     `json:"today,omitempty" yaml:"today,omitempty"`
	Version string   `json:"version,omitempty" yaml:"version,omitempty"`
}

// Validate checks the request shape. Record rules are applied by the codec.
func (r EncodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Stem, validation.Required),
		validation.Field(&r.Date,
			validation.Date(namefile.DateLayout),
			validation.When(r.Today, validation.Empty.Error("must be empty when today is set")),
		),
	)
}

// EncodeResult is the canonical name together with the normalized record.
type EncodeResult struct {
	Name   string          `json:"name" yaml:"name"`
	Record namefile.Fields `json:"record" yaml:"record"`
}

// Service coordinates storage and index operations.
type Service struct {
	store storage.Provider
	db    index.Catalog
	clock clock.Clock
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for "today" dates.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// NewService creates a new catalog service.
func NewService(store storage.Provider, db index.Catalog, opts ...Option) *Service {
	s := &Service{store: store, db: db, clock: clock.New()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Encode builds a record from req and returns its canonical name.
func (s *Service) Encode(_ context.Context, req EncodeRequest) (*EncodeResult, error) {
	return Encode(req, s.clock)
}

// Encode validates req and encodes it. clk is read when req.Today is set.
func Encode(req EncodeRequest, clk clock.Clock) (*EncodeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Join(apperr.ErrInvalidInput, err)
	}

	fields := namefile.Fields{
		Stem:    req.Stem,
		Suffix:  req.Suffix,
		Tags:    req.Tags,
		Date:    req.Date,
		Version: req.Version,
	}
	var opts []namefile.Option
	if req.Today {
		opts = append(opts, namefile.WithClock(clk), namefile.WithToday())
	}
	rec, err := fields.Record(opts...)
	if err != nil {
		return nil, errors.Join(apperr.ErrInvalidInput, err)
	}
	name, err := namefile.Encode(rec)
	if err != nil {
		return nil, errors.Join(apperr.ErrInvalidInput, err)
	}
	return &EncodeResult{Name: name, Record: rec.Fields()}, nil
}

// Decode parses name into its fields. Errors carry the codec sentinels.
func (s *Service) Decode(_ context.Context, name string) (namefile.Fields, error) {
	rec, err := namefile.Decode(name)
	if err != nil {
		return namefile.Fields{}, err
	}
	return rec.Fields(), nil
}

// GetEntry returns the catalogued entry at path.
func (s *Service) GetEntry(_ context.Context, path string) (*models.Entry, error) {
	return s.db.GetEntry(path)
}

// ListEntries returns one page of entries and the total match count.
func (s *Service) ListEntries(_ context.Context, f index.Filter) ([]models.Entry, int, error) {
	return s.db.ListEntries(f)
}

// Latest returns the newest entry for stem, optionally restricted to one
// suffix. The stem is normalized the same way Encode normalizes it.
func (s *Service) Latest(_ context.Context, stem, suffix string) (*models.Entry, error) {
	rec, err := namefile.New(stem, namefile.WithSuffix(suffix))
	if err != nil {
		return nil, errors.Join(apperr.ErrInvalidInput, err)
	}
	entries, err := s.db.EntriesByStem(rec.Stem(), rec.Suffix())
	if err != nil {
		return nil, err
	}
	e, ok := pickLatest(entries)
	if !ok {
		return nil, fmt.Errorf("catalog: no entry for stem %q: %w", rec.Stem(), apperr.ErrNotFound)
	}
	return &e, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// ListUnmanaged returns files whose names do not follow the convention.
func (s *Service) ListUnmanaged(_ context.Context, limit, offset int) ([]models.Unmanaged, int, error) {
	return s.db.ListUnmanaged(limit, offset)
}

// IndexFile decodes the file's name and records it in the index.
// Exported so that callers holding a FileMeta can reuse it.
func (s *Service) IndexFile(meta models.FileMeta) (bool, error) {
	return index.IndexFile(s.db, meta)
}

// Refresh statuses.
const (
	RefreshManaged   = "managed"
	RefreshUnmanaged = "unmanaged"
	RefreshRemoved   = "removed"
)

// RefreshResult reports what Refresh did with a path.
type RefreshResult struct {
	Path   string `json:"path" yaml:"path"`
	Status string `json:"status" yaml:"status"`
}

// Refresh re-reads a single file from storage and indexes it. A file that
// no longer exists is removed from the index.
func (s *Service) Refresh(_ context.Context, path string) (*RefreshResult, error) {
	meta, err := s.store.Stat(path)
	if errors.Is(err, apperr.ErrNotFound) {
		if err := s.db.DeleteEntry(path); err != nil {
			return nil, err
		}
		return &RefreshResult{Path: path, Status: RefreshRemoved}, nil
	}
	if err != nil {
		return nil, err
	}
	ok, err := s.IndexFile(meta)
	if err != nil {
		return nil, err
	}
	status := RefreshUnmanaged
	if ok {
		status = RefreshManaged
	}
	return &RefreshResult{Path: meta.Path, Status: status}, nil
}
