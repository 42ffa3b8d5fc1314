package api

import (
	"context"
	"net/http"

	"ArmeriaCorpAdmin/api/auth"
	"ArmeriaCorpAdmin/api/constants"
	"ArmeriaCorpAdmin/internal/validation"
)

type contextKey string

const (
	SessionKey contextKey = "session"
)

// SessionMiddleware extracts user_id from the body, validates the live
// session and attaches it to the request context. Every area service
// route except login/logout goes through it.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := validation.ExtractUserID(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, constants.ErrMissingUserID)
			return
		}
		session, ok := auth.ValidateSession(userID)
		if !ok {
			WriteError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		ctx := context.WithValue(r.Context(), SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
