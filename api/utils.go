package api

import (
	"encoding/json"
	"net/http"

	"ArmeriaCorpAdmin/api/constants"
)

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set(constants.HeaderContent, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
