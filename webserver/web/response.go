package web

import (
	"encoding/json"
	"net/http"

	"github.com/mordilloSan/go-logger/logger"
)

// errorResponse is the body of every non-2xx answer. Node is set when the
// failure belongs to a specific node type.
type errorResponse struct {
	Error string `json:"error"`
	Node  string `json:"node,omitempty"`
}

// WriteJSON encodes data as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.DebugKV("response encode failed", "status", status, "error", err)
	}
}

// WriteError answers with a bare error message.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, errorResponse{Error: message})
}

// WriteNodeError answers with err, tagged with the node type it came from.
func WriteNodeError(w http.ResponseWriter, status int, nodeType string, err error) {
	WriteJSON(w, status, errorResponse{Error: err.Error(), Node: nodeType})
}
