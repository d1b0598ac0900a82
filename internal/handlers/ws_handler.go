package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/ravin009/chatfun-sub000/internal/services"
	"github.com/ravin009/chatfun-sub000/internal/ws"
	"github.com/ravin009/chatfun-sub000/pkg/jwt"
	"github.com/ravin009/chatfun-sub000/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SocketHandler upgrades HTTP requests to WebSocket connections and
// dispatches client events to the chat services.
type SocketHandler struct {
	Hub       *ws.Hub
	Presence  *services.PresenceService
	Rooms     *services.RoomService
	Chat      *services.ChatService
	Private   *services.PrivateMessageService
	JWTSecret string
}

// NewSocketHandler creates a new instance of SocketHandler.
func NewSocketHandler(hub *ws.Hub, presence *services.PresenceService, rooms *services.RoomService, chat *services.ChatService, private *services.PrivateMessageService, jwtSecret string) *SocketHandler {
	return &SocketHandler{
		Hub:       hub,
		Presence:  presence,
		Rooms:     rooms,
		Chat:      chat,
		Private:   private,
		JWTSecret: jwtSecret,
	}
}

// inboundEvent defers payload decoding until the event name is known.
type inboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ServeWS authenticates the caller from the token query parameter,
// upgrades the connection and runs the read loop until disconnect.
func (h *SocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwt.ValidateToken(token, h.JWTSecret)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	sock, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	conn := ws.NewConn(sock, claims.UserID)
	h.Hub.Register(conn)
	logger.Log.Infof("WebSocket connected: user %s", claims.UserID)

	defer func() {
		h.disconnect(conn, userID)
		sock.Close()
	}()

	for {
		var evt inboundEvent
		if err := sock.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Warnf("WebSocket read error for user %s: %v", claims.UserID, err)
			}
			return
		}
		h.dispatch(r.Context(), conn, userID, evt)
	}
}

func (h *SocketHandler) dispatch(ctx context.Context, conn *ws.Conn, userID primitive.ObjectID, evt inboundEvent) {
	switch evt.Event {
	case ws.EventUserOnline:
		if err := h.Presence.MarkOnline(ctx, userID); err != nil {
			conn.SendError(err.Error())
		}

	case ws.EventUserOffline:
		if err := h.Presence.MarkOffline(ctx, userID); err != nil {
			conn.SendError(err.Error())
		}

	case ws.EventJoinRoom:
		var data struct {
			RoomID string `json:"roomId"`
		}
		if err := json.Unmarshal(evt.Data, &data); err != nil {
			conn.SendError("Invalid payload")
			return
		}
		h.joinRoom(ctx, conn, userID, data.RoomID)

	case ws.EventLeaveRoom:
		h.leaveRoom(ctx, conn, userID)

	case ws.EventMessage:
		var data struct {
			RoomID  string `json:"roomId"`
			Message string `json:"message"`
			Image   string `json:"image"`
		}
		if err := json.Unmarshal(evt.Data, &data); err != nil {
			conn.SendError("Invalid payload")
			return
		}
		msg, err := h.Chat.SendMessage(ctx, userID, data.RoomID, data.Message, data.Image)
		if err != nil {
			conn.SendError(err.Error())
			return
		}
		h.Hub.BroadcastRoom(msg.RoomID, ws.Event{Event: ws.EventMessage, Data: msg})

	case ws.EventPrivateMessage:
		var data struct {
			RecipientID string `json:"recipientId"`
			Message     string `json:"message"`
		}
		if err := json.Unmarshal(evt.Data, &data); err != nil {
			conn.SendError("Invalid payload")
			return
		}
		recipientID, err := primitive.ObjectIDFromHex(data.RecipientID)
		if err != nil {
			conn.SendError("Invalid recipient ID")
			return
		}
		msg, err := h.Private.Send(ctx, userID, recipientID, data.Message)
		if err != nil {
			conn.SendError(err.Error())
			return
		}
		h.Private.Deliver(msg)

	default:
		conn.SendError("Unknown event")
	}
}

// joinRoom checks access first so a rejected join leaves the current
// room membership untouched.
func (h *SocketHandler) joinRoom(ctx context.Context, conn *ws.Conn, userID primitive.ObjectID, roomID string) {
	room, err := h.Rooms.AuthorizeJoin(ctx, userID, roomID)
	if err != nil {
		conn.SendError(err.Error())
		return
	}
	if prev := conn.RoomID; prev != "" && prev != room.RoomID {
		h.Hub.LeaveRoom(conn)
		if err := h.Presence.ExitRoom(ctx, userID, prev); err != nil {
			logger.Log.Warnf("Failed to exit room %s for user %s: %v", prev, userID.Hex(), err)
		}
	}
	h.Hub.JoinRoom(conn, room.RoomID)
	if err := h.Presence.EnterRoom(ctx, userID, room.RoomID); err != nil {
		conn.SendError(err.Error())
	}
}

func (h *SocketHandler) leaveRoom(ctx context.Context, conn *ws.Conn, userID primitive.ObjectID) {
	roomID := conn.RoomID
	if roomID == "" {
		return
	}
	h.Hub.LeaveRoom(conn)
	if err := h.Presence.ExitRoom(ctx, userID, roomID); err != nil {
		conn.SendError(err.Error())
	}
}

// disconnect runs the leave flow and marks the user offline. It uses a
// fresh context because the request context is gone once the socket
// closes.
func (h *SocketHandler) disconnect(conn *ws.Conn, userID primitive.ObjectID) {
	ctx := context.Background()
	if roomID := conn.RoomID; roomID != "" {
		h.Hub.LeaveRoom(conn)
		if err := h.Presence.ExitRoom(ctx, userID, roomID); err != nil {
			logger.Log.Warnf("Failed to exit room on disconnect for user %s: %v", userID.Hex(), err)
		}
	}
	h.Hub.Unregister(conn)
	if err := h.Presence.MarkOffline(ctx, userID); err != nil {
		logger.Log.Warnf("Failed to mark user %s offline: %v", userID.Hex(), err)
	}
	logger.Log.Infof("WebSocket disconnected: user %s", userID.Hex())
}
