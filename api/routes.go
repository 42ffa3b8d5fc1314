package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"ArmeriaCorpAdmin/internal/config"
)

// NewRouter wires the gateway: auth endpoints locally, everything else
// proxied to the owning area service behind the session middleware.
func NewRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/auth/login", LoginHandler).Methods("POST")
	router.HandleFunc("/auth/logout", LogoutHandler).Methods("POST")
	router.HandleFunc("/auth/sessions", GetSessionsHandler).Methods("GET")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	clients := createReverseProxy("http://localhost" + config.ClientsPort)
	payments := createReverseProxy("http://localhost" + config.PaymentsPort)
	armory := createReverseProxy("http://localhost" + config.ArmoryPort)

	router.PathPrefix("/clients").Handler(SessionMiddleware(clients))
	router.PathPrefix("/payments").Handler(SessionMiddleware(payments))
	router.PathPrefix("/armory").Handler(SessionMiddleware(armory))

	return router
}
