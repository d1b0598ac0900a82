package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ravin009/chatfun-sub000/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrivateMessageHandler handles HTTP requests for private messages.
type PrivateMessageHandler struct {
	Service *services.PrivateMessageService
}

// NewPrivateMessageHandler creates a new instance of PrivateMessageHandler.
func NewPrivateMessageHandler(service *services.PrivateMessageService) *PrivateMessageHandler {
	return &PrivateMessageHandler{Service: service}
}

// SendHandler stores a private message and pushes it to connected clients.
func (h *PrivateMessageHandler) SendHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		RecipientID string `json:"recipientId"`
		Message     string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	recipientID, err := primitive.ObjectIDFromHex(body.RecipientID)
	if err != nil {
		http.Error(w, "Invalid recipient ID", http.StatusBadRequest)
		return
	}

	msg, err := h.Service.Send(r.Context(), userID, recipientID, body.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.Service.Deliver(msg)
	writeJSON(w, http.StatusCreated, msg)
}

// GetConversationHandler returns the retained history between the caller
// and another user.
func (h *PrivateMessageHandler) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	otherID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("with"))
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	messages, err := h.Service.GetConversation(r.Context(), userID, otherID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// GetAllHandler returns every private message the caller sent or received.
func (h *PrivateMessageHandler) GetAllHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	messages, err := h.Service.GetMessagesForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// MarkReadHandler marks a message as read by its recipient.
func (h *PrivateMessageHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	messageID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.MarkRead(r.Context(), messageID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Message marked as read"})
}
