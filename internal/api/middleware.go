// Package api implements the local diary HTTP API using chi.
package api

import (
	"net/http"

	"github.com/starford/grimoire/internal/apperr"
	"github.com/starford/grimoire/internal/session"
)

// stateReader reports the current session state.
type stateReader interface {
	State() session.State
}

// RequireUnlocked returns middleware that rejects requests with 423 Locked
// until the session gate has been passed.
func RequireUnlocked(s stateReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.State() != session.Authenticated {
				writeError(w, "auth", apperr.ErrLocked)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
