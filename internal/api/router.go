package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/grimoire/internal/diary"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *diary.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Session gate.
	r.Get("/session", h.Session)
	r.Post("/session/enroll", h.Enroll)
	r.Post("/session/verify", h.Verify)
	r.Get("/clock", h.Clock)

	// Entries require an unlocked diary.
	r.Group(func(r chi.Router) {
		r.Use(RequireUnlocked(svc))
		r.Get("/entries", h.ListEntries)
		r.Post("/entries", h.AppendEntry)
		r.Get("/search", h.Search)
		r.Post("/reindex", h.Reindex)
	})

	// Event payloads carry labels and states only, never entry text.
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
