package handler

import (
	"encoding/json"
	"net/http"

	dErrors "mhregistry/pkg/domain-errors"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError translates domain error codes to HTTP statuses so every route
// returns the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := http.StatusInternalServerError
	message := err.Error()
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		status = http.StatusUnauthorized
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
	case dErrors.CodeConflict:
		status = http.StatusConflict
	default:
		// Internal and invariant defects are configuration problems, not
		// caller problems. Details stay out of responses.
		message = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: string(code), Message: message})
}
