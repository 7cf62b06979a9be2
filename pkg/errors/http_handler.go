package errors

import (
	"encoding/json"
	"net/http"
)

// WriteError renders err as a JSON ErrorResponse. The returned error is the
// encoding failure, if any, so callers can log it.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := AsAppError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())

	return json.NewEncoder(w).Encode(ErrorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}
