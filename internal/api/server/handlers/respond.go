package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nsai-uio/IMF-AITool/internal/api"
)

// respondWithError maps handler errors to a status code and the shared
// {"error": ...} body. Unknown errors never leak their text.
func (h *Handler) respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	message := err.Error()

	switch {
	case errors.Is(err, ErrValidation):
		statusCode = http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, ErrTooLarge):
		statusCode = http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInternal):
		statusCode = http.StatusInternalServerError
	default:
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal server error occurred."
	}

	h.log.Warnf("Responding with %d: %s (%v)", statusCode, message, err)
	h.respondWithJSON(w, statusCode, api.ErrorResponse{Error: message})
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("Failed to marshal JSON response: ", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		h.log.Error("Failed to write JSON response: ", err)
	}
}
