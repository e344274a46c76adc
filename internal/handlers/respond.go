package handlers

import (
	"encoding/json"
	"net/http"

	"flashdeck/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, r *http.Request) {
	writeJSON(w, status, models.ErrorResponse{
		Error:     message,
		RequestID: r.Header.Get("X-Request-ID"),
	})
}
