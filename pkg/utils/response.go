package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// RespondJSON writes a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError writes a JSON error envelope.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// RespondTextAttachment writes a plain-text download.
func RespondTextAttachment(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Printf("failed to write attachment: %v", err)
	}
}
