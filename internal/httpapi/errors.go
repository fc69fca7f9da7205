package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nikolayk812/storefront/internal/domain"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error string `json:"error"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message})
}

// writeDomainError maps the error taxonomy to HTTP statuses. Anything not
// recognized is an internal failure and gets the generic retry message.
func writeDomainError(w http.ResponseWriter, err error, internalMessage string) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, domain.ErrValidation):
		WriteJSONError(w, http.StatusBadRequest, messageOf(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrInsufficientStock):
		WriteJSONError(w, http.StatusBadRequest, messageOf(err, domain.ErrInsufficientStock))
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusBadRequest, messageOf(err, domain.ErrNotFound))
	default:
		WriteJSONError(w, http.StatusInternalServerError, internalMessage)
	}
}

// messageOf strips wrapping prefixes and the sentinel suffix so the client
// sees the human-readable part, e.g.
// "commit: insufficient stock for product: Mug: insufficient stock"
// becomes "insufficient stock for product: Mug".
func messageOf(err error, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())

	// Drop single-word call-site prefixes added by wrapping layers.
	for {
		i := strings.Index(msg, ": ")
		if i < 0 || strings.Contains(msg[:i], " ") {
			break
		}
		msg = msg[i+2:]
	}

	return msg
}
