package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/namefile/internal/apperr"
	"github.com/starford/namefile/internal/catalog"
	"github.com/starford/namefile/internal/index"
	"github.com/starford/namefile/pkg/namefile"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Handler holds API route handlers.
type Handler struct {
	svc *catalog.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

// filePath extracts the catalog path from the URL (everything after /api/files/).
// Supports encoded slashes from OpenAPI clients (e.g. 2024%2Freport.pdf).
func filePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// page reads limit and offset, clamping limit to [1, maxPageSize].
func page(q url.Values) (int, int) {
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit <= 0 {
		limit = defaultPageSize
	}
	return min(limit, maxPageSize), max(offset, 0)
}

// searchLimit reads limit, capped at maxPageSize. Zero lets the index
// apply its default.
func searchLimit(q url.Values) int {
	limit, _ := strconv.Atoi(q.Get("limit"))
	return min(max(limit, 0), maxPageSize)
}

// codecError writes a codec failure with its kind.
func codecError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errResponse{
		Error: index.Reason(err),
		Kind:  namefile.ErrorKind(err),
	})
}

// Encode handles POST /api/encode.
//
//	@Summary		Encode a record into its canonical file name
//	@Tags			codec
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EncodeRequest	true	"Record to encode"
//	@Success		200		{object}	EncodeResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/encode [post]
func (h *Handler) Encode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req EncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res, err := h.svc.Encode(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			codecError(w, http.StatusBadRequest, err)
		} else {
			slog.Error("encode failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Decode handles GET /api/decode.
//
//	@Summary		Decode a file name into its record
//	@Tags			codec
//	@Produce		json
//	@Param			name	query		string	true	"File name"
//	@Success		200		{object}	DecodeResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decode [get]
func (h *Handler) Decode(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'name' is required"))
		return
	}
	fields, err := h.svc.Decode(r.Context(), name)
	if err != nil {
		codecError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

// ListFiles handles GET /api/files.
//
//	@Summary		List catalogued files with optional pagination and filtering
//	@Tags			files
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			tag		query		string	false	"Filter by tag (repeatable, all must match)"
//	@Param			stem	query		string	false	"Filter by stem"
//	@Param			suffix	query		string	false	"Filter by suffix"
//	@Param			sort	query		string	false	"Sort field"	Enums(path, stem, date, modified)
//	@Success		200		{object}	FileListResponse
//	@Security		BearerAuth
//	@Router			/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := page(q)
	f := index.Filter{
		Tags:   q["tag"],
		Stem:   q.Get("stem"),
		Suffix: strings.TrimPrefix(q.Get("suffix"), "."),
		Limit:  limit,
		Offset: offset,
		Sort:   q.Get("sort"),
	}

	items, total, err := h.svc.ListEntries(r.Context(), f)
	if err != nil {
		slog.Error("list files failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, FileListResponse{Files: items, Total: total})
}

// GetFile handles GET /api/files/*.
//
//	@Summary		Get a single catalogued file by path
//	@Tags			files
//	@Produce		json
//	@Param			path	path		string	true	"File path"
//	@Success		200		{object}	models.Entry
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	entry, err := h.svc.GetEntry(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get file failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// RefreshFile handles POST /api/files/*.
//
//	@Summary		Re-read a single file from disk and update its catalog row
//	@Tags			files
//	@Produce		json
//	@Param			path	path		string	true	"File path"
//	@Success		200		{object}	RefreshResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [post]
func (h *Handler) RefreshFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	res, err := h.svc.Refresh(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("refresh failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Latest handles GET /api/latest.
//
//	@Summary		Get the newest version of a stem
//	@Tags			files
//	@Produce		json
//	@Param			stem	query		string	true	"Stem"
//	@Param			suffix	query		string	false	"Restrict to one suffix"
//	@Success		200		{object}	models.Entry
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/latest [get]
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stem := q.Get("stem")
	if stem == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'stem' is required"))
		return
	}
	entry, err := h.svc.Latest(r.Context(), stem, q.Get("suffix"))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidInput):
			codecError(w, http.StatusBadRequest, err)
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		default:
			slog.Error("latest failed", slog.String("stem", stem), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ListUnmanaged handles GET /api/unmanaged.
//
//	@Summary		List files whose names do not follow the convention
//	@Tags			files
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	UnmanagedListResponse
//	@Security		BearerAuth
//	@Router			/unmanaged [get]
func (h *Handler) ListUnmanaged(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r.URL.Query())
	items, total, err := h.svc.ListUnmanaged(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list unmanaged failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, UnmanagedListResponse{Files: items, Total: total})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across names, stems, tags and suffixes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	results, err := h.svc.Search(r.Context(), q, searchLimit(r.URL.Query()))
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
