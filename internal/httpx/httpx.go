package httpx

import (
	"encoding/json"
	"net/http"
)

// APIError is the error body every endpoint returns: a human-readable
// message, plus an optional diagnostics link for fulfillment failures.
type APIError struct {
	Message   string `json:"message"`
	ReportURL string `json:"followLinkToEndChaos,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, APIError{Message: msg})
}
