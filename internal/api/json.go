package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/grimoire/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
	Kind  string `json:"kind,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// kinds maps each error kind to its HTTP status and wire name.
var kinds = []struct {
	err    error
	status int
	name   string
}{
	{apperr.ErrAlreadyEnrolled, http.StatusConflict, "already_enrolled"},
	{apperr.ErrNoCredential, http.StatusConflict, "no_credential"},
	{apperr.ErrEmptyPassword, http.StatusBadRequest, "empty_password"},
	{apperr.ErrPasswordTooLong, http.StatusBadRequest, "password_too_long"},
	{apperr.ErrWrongPassword, http.StatusUnauthorized, "wrong_password"},
	{apperr.ErrEmptyContent, http.StatusBadRequest, "empty_content"},
	{apperr.ErrInvalidContent, http.StatusBadRequest, "invalid_content"},
	{apperr.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
	{apperr.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperr.ErrLocked, http.StatusLocked, "locked"},
	{apperr.ErrInvalidState, http.StatusConflict, "invalid_state"},
}

// writeError maps err to a status code and the user-facing notice.
func writeError(w http.ResponseWriter, op string, err error) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			writeJSON(w, k.status, errResponse{Error: apperr.Notice(err), Kind: k.name})
			return
		}
	}
	slog.Error(op+" failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}
