package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/ravin009/chatfun-sub000/internal/services"
	"github.com/ravin009/chatfun-sub000/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxUploadSize = 10 << 20 // 10 MB

// ChatHandler handles HTTP requests for room chat messages.
type ChatHandler struct {
	Service   *services.ChatService
	UploadDir string
}

// NewChatHandler creates a new instance of ChatHandler.
func NewChatHandler(service *services.ChatService, uploadDir string) *ChatHandler {
	return &ChatHandler{Service: service, UploadDir: uploadDir}
}

// SendMessageHandler persists a chat message in a room. Delivery to
// connected clients happens over the socket path, not here.
func (h *ChatHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		RoomID      string `json:"roomId"`
		Message     string `json:"message"`
		RecipientID string `json:"recipientId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	var msg *models.Chat
	var err error
	if body.RecipientID != "" {
		recipientID, parseErr := primitive.ObjectIDFromHex(body.RecipientID)
		if parseErr != nil {
			http.Error(w, "Invalid recipient ID", http.StatusBadRequest)
			return
		}
		msg, err = h.Service.SendMessageTo(r.Context(), userID, recipientID, body.RoomID, body.Message, "")
	} else {
		msg, err = h.Service.SendMessage(r.Context(), userID, body.RoomID, body.Message, "")
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// GetMessagesHandler returns the retained history of a room.
func (h *ChatHandler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	messages, err := h.Service.GetHistory(r.Context(), userID, mux.Vars(r)["roomId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// SendImageHandler accepts a multipart image upload, stores it under the
// upload directory and persists a chat message referencing it.
func (h *ChatHandler) SendImageHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "File too large or invalid form", http.StatusBadRequest)
		return
	}

	roomID := r.FormValue("roomId")
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		http.Error(w, "Unsupported image type", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0755); err != nil {
		logger.Log.Errorf("Failed to create upload directory: %v", err)
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), userID.Hex(), ext)
	dst, err := os.Create(filepath.Join(h.UploadDir, filename))
	if err != nil {
		logger.Log.Errorf("Failed to create upload file: %v", err)
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		logger.Log.Errorf("Failed to write upload file: %v", err)
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	msg, err := h.Service.SendMessage(r.Context(), userID, roomID, r.FormValue("message"), "/uploads/"+filename)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
