package api

import (
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"

	"ArmeriaCorpAdmin/api/auth"
	"ArmeriaCorpAdmin/api/constants"
)

// Global reference to AuthService (set from the app manager).
var (
	authService     *auth.AuthService
	authServiceOnce sync.Once
)

func SetAuthService(svc *auth.AuthService) {
	authServiceOnce.Do(func() {
		authService = svc
	})
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	return r.RemoteAddr
}

// LoginHandler handles POST /auth/login
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
		return
	}
	if authService == nil {
		WriteError(w, http.StatusInternalServerError, "Auth service unavailable")
		return
	}
	session, err := authService.Login(req.Username, req.Password, extractClientIP(r))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, session)
}

// LogoutHandler handles POST /auth/logout
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
		return
	}
	if authService == nil {
		WriteError(w, http.StatusInternalServerError, "Auth service unavailable")
		return
	}
	if err := authService.Logout(req.SessionID); err != nil {
		WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

func GetSessionsHandler(w http.ResponseWriter, r *http.Request) {
	if authService == nil {
		WriteError(w, http.StatusInternalServerError, "Auth service unavailable")
		return
	}
	WriteJSON(w, http.StatusOK, authService.ActiveSessions())
}

// createReverseProxy forwards a path prefix to an area service.
func createReverseProxy(target string) http.Handler {
	targetURL, err := url.Parse(target)
	if err != nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusBadGateway, "bad upstream: "+target)
		})
	}
	return httputil.NewSingleHostReverseProxy(targetURL)
}
