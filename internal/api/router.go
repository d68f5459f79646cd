package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/namefile/internal/catalog"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *catalog.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Codec.
	r.Post("/encode", h.Encode)
	r.Get("/decode", h.Decode)

	// Catalog.
	r.Get("/files", h.ListFiles)
	r.Get("/files/*", h.GetFile)
	r.Post("/files/*", h.RefreshFile)
	r.Get("/latest", h.Latest)
	r.Get("/unmanaged", h.ListUnmanaged)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
