package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ravin009/chatfun-sub000/internal/services"
	"github.com/ravin009/chatfun-sub000/pkg/logger"
)

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Errorf("Failed to encode response: %v", err)
	}
}

// writeServiceError maps service sentinel errors onto the HTTP taxonomy:
// 400 validation, 403 authorization, 404 not found, 500 everything else.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrRoomNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrBannedFromSending),
		errors.Is(err, services.ErrPrivateRoomAccess),
		errors.Is(err, services.ErrReadOnly),
		errors.Is(err, services.ErrBlockedByRecipient),
		errors.Is(err, services.ErrInsufficientRating),
		errors.Is(err, services.ErrNotAuthorized),
		errors.Is(err, services.ErrNotInvited):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrMessageTooLong),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrRoomNameTaken):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Log.Errorf("Unclassified service error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
