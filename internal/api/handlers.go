package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/starford/grimoire/internal/diary"
)

// maxBodyBytes caps request bodies; entries are plain text.
const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *diary.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *diary.Service) *Handler {
	return &Handler{svc: svc}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return false
	}
	return true
}

func (h *Handler) sessionResponse() SessionResponse {
	resp := SessionResponse{State: h.svc.State()}
	if at, ok := h.svc.UnlockedAt(); ok {
		resp.UnlockedAt = &at
	}
	return resp
}

// Session handles GET /api/session.
//
//	@Summary		Current session gate state
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Router			/session [get]
func (h *Handler) Session(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionResponse())
}

// Enroll handles POST /api/session/enroll.
//
//	@Summary		Create the diary password
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PasswordRequest	true	"Password"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/session/enroll [post]
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := h.svc.Enroll(r.Context(), req.Password); err != nil {
		writeError(w, "enroll", err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse())
}

// Verify handles POST /api/session/verify.
//
//	@Summary		Unlock the diary with its password
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PasswordRequest	true	"Password"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/session/verify [post]
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if _, err := h.svc.Verify(r.Context(), req.Password); err != nil {
		writeError(w, "verify", err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionResponse())
}

// Clock handles GET /api/clock.
//
//	@Summary		Current day, date, and time
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	clock.Stamp
//	@Router			/clock [get]
func (h *Handler) Clock(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Now())
}

// ListEntries handles GET /api/entries.
//
//	@Summary		List all entries in append order
//	@Tags			entries
//	@Produce		json
//	@Success		200	{object}	EntryListResponse
//	@Failure		423	{object}	errResponse
//	@Router			/entries [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.ListAll(r.Context())
	if err != nil {
		writeError(w, "list entries", err)
		return
	}
	out := make([]EntryResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toEntryResponse(rec))
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: out, Total: len(out)})
}

// AppendEntry handles POST /api/entries.
//
//	@Summary		Append a diary entry
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AppendRequest	true	"Entry text"
//	@Success		201		{object}	EntryResponse
//	@Failure		400		{object}	errResponse
//	@Failure		423		{object}	errResponse
//	@Router			/entries [post]
func (h *Handler) AppendEntry(w http.ResponseWriter, r *http.Request) {
	var req AppendRequest
	if !decode(w, r, &req) {
		return
	}
	rec, err := h.svc.Append(r.Context(), req.Content)
	if err != nil {
		writeError(w, "append entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(*rec))
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search over entries
//	@Tags			entries
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q parameter required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Reindex handles POST /api/reindex.
//
//	@Summary		Rebuild the search index from the entry file
//	@Tags			entries
//	@Produce		json
//	@Success		200	{object}	ReindexResponse
//	@Router			/reindex [post]
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Reindex(r.Context())
	if err != nil {
		writeError(w, "reindex", err)
		return
	}
	writeJSON(w, http.StatusOK, ReindexResponse{
		Indexed: stats.Indexed,
		Removed: stats.Removed,
		Total:   stats.Total,
	})
}
