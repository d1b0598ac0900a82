package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ravin009/chatfun-sub000/internal/services"
	"github.com/ravin009/chatfun-sub000/pkg/logger"
	"github.com/ravin009/chatfun-sub000/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoomHandler handles HTTP requests for room lifecycle and administration.
type RoomHandler struct {
	Service *services.RoomService
}

// NewRoomHandler creates a new instance of RoomHandler.
func NewRoomHandler(service *services.RoomService) *RoomHandler {
	return &RoomHandler{Service: service}
}

func callerID(r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	return id, err == nil
}

// CreateRoomHandler creates a room for the caller.
func (h *RoomHandler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Name      string `json:"name"`
		IsPrivate bool   `json:"isPrivate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	room, err := h.Service.CreateRoom(r.Context(), userID, body.Name, body.IsPrivate)
	if err != nil {
		logger.Log.Warnf("Room creation rejected: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// ListRoomsHandler returns the rooms visible to the caller.
func (h *RoomHandler) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rooms, err := h.Service.ListRooms(r.Context(), userID)
	if err != nil {
		http.Error(w, "Failed to list rooms", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

// GetRoomHandler returns one room's details, enforcing the private ACL.
func (h *RoomHandler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	room, err := h.Service.GetRoom(r.Context(), userID, mux.Vars(r)["roomId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// DeleteRoomHandler removes a room and its history.
func (h *RoomHandler) DeleteRoomHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.DeleteRoom(r.Context(), userID, mux.Vars(r)["roomId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Room deleted"})
}

// TransferOwnershipHandler moves the owner role to another user.
func (h *RoomHandler) TransferOwnershipHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		NewOwnerID string `json:"newOwnerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	newOwnerID, err := primitive.ObjectIDFromHex(body.NewOwnerID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.TransferOwnership(r.Context(), userID, mux.Vars(r)["roomId"], newOwnerID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Ownership transferred"})
}

// SetPrivacyHandler toggles the room's private flag.
func (h *RoomHandler) SetPrivacyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		IsPrivate bool `json:"isPrivate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetPrivacy(r.Context(), userID, mux.Vars(r)["roomId"], body.IsPrivate); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Privacy updated"})
}

// SetColorHandler changes the room's background color.
func (h *RoomHandler) SetColorHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		BackgroundColor string `json:"backgroundColor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetBackgroundColor(r.Context(), userID, mux.Vars(r)["roomId"], body.BackgroundColor); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Color updated"})
}

// SetReadOnlyHandler adds a user to the room's read-only list.
func (h *RoomHandler) SetReadOnlyHandler(w http.ResponseWriter, r *http.Request) {
	h.readOnly(w, r, true)
}

// RemoveReadOnlyHandler removes a user from the room's read-only list.
func (h *RoomHandler) RemoveReadOnlyHandler(w http.ResponseWriter, r *http.Request) {
	h.readOnly(w, r, false)
}

func (h *RoomHandler) readOnly(w http.ResponseWriter, r *http.Request, readOnly bool) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	targetID, err := primitive.ObjectIDFromHex(body.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetReadOnly(r.Context(), userID, mux.Vars(r)["roomId"], targetID, readOnly); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Read-only list updated"})
}

// InviteHandler invites a user to a private room.
func (h *RoomHandler) InviteHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	inviteeID, err := primitive.ObjectIDFromHex(body.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.Invite(r.Context(), userID, mux.Vars(r)["roomId"], inviteeID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Invitation sent"})
}

// AcceptInvitationHandler grants the caller access to a private room
// they were invited to.
func (h *RoomHandler) AcceptInvitationHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.AcceptInvitation(r.Context(), userID, mux.Vars(r)["roomId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Invitation accepted"})
}

// GetDefaultRoomHandler returns the room new users are auto-joined to.
func (h *RoomHandler) GetDefaultRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, err := h.Service.GetDefaultRoom(r.Context())
	if err != nil {
		http.Error(w, "No default room configured", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// AdminSetDefaultRoomHandler points the default room at an existing room.
func (h *RoomHandler) AdminSetDefaultRoomHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RoomID string `json:"roomId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetDefaultRoom(r.Context(), body.RoomID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Default room updated"})
}
