package http

import (
	"encoding/json"
	"net/http"
)

// WriteJSON encodes data with the given status. The returned error is the
// encoding failure, if any; headers are already sent by then.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}
