package api

import (
	"github.com/starford/namefile/internal/catalog"
	"github.com/starford/namefile/internal/index"
	"github.com/starford/namefile/internal/models"
	"github.com/starford/namefile/pkg/namefile"
)

// EncodeRequest is the request body for encoding a name (aliased from the domain layer).
type EncodeRequest = catalog.EncodeRequest

// EncodeResponse is the canonical name and normalized record.
type EncodeResponse = catalog.EncodeResult

// RefreshResponse reports whether a refreshed path is managed, unmanaged or gone.
type RefreshResponse = catalog.RefreshResult

// DecodeResponse is the decoded record of a name.
type DecodeResponse = namefile.Fields

// FileListResponse wraps paginated catalog listings.
type FileListResponse struct {
	Files []models.Entry `json:"files" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// UnmanagedListResponse wraps paginated listings of undecodable names.
type UnmanagedListResponse struct {
	Files []models.Unmanaged `json:"files" validate:"required"`
	Total int                `json:"total" example:"3" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}
