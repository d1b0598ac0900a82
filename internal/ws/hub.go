// Package ws implements the real-time broadcast layer: a hub tracking
// every connection, a per-user index for targeted delivery, and per-room
// multicast groups. The hub is an explicit handle injected into whatever
// needs to publish events.
package ws

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// jsonWriter is the subset of *websocket.Conn the hub needs. Tests
// substitute an in-memory implementation.
type jsonWriter interface {
	WriteJSON(v interface{}) error
}

// Conn is one client connection. UserID comes from the validated token at
// upgrade time; RoomID is the last-known joined room, used for cleanup
// when the connection drops without an explicit leave.
type Conn struct {
	sock    jsonWriter
	writeMu sync.Mutex

	UserID string
	RoomID string
}

// NewConn wraps a websocket connection for an authenticated user.
func NewConn(sock jsonWriter, userID string) *Conn {
	return &Conn{sock: sock, UserID: userID}
}

// Send writes one event to the connection. Delivery is best-effort: a
// failed write is logged and otherwise ignored, matching the rest of the
// socket layer's no-retry semantics.
func (c *Conn) Send(event Event) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.sock.WriteJSON(event); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": c.UserID,
			"event":  event.Event,
		}).Debugf("Dropped event: %v", err)
	}
}

// SendError emits a best-effort error event to the connection.
func (c *Conn) SendError(message string) {
	c.Send(Event{Event: EventError, Data: ErrorPayload{Message: message}})
}

// Hub tracks every live connection, indexed globally, by user and by room.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*Conn]struct{}
	byUser map[string]map[*Conn]struct{}
	rooms  map[string]map[*Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns:  make(map[*Conn]struct{}),
		byUser: make(map[string]map[*Conn]struct{}),
		rooms:  make(map[string]map[*Conn]struct{}),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[c] = struct{}{}
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Conn]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
}

// Unregister removes a connection from the hub and any room group.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, c)
	if set, ok := h.byUser[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	h.removeFromRoomLocked(c)
}

// JoinRoom adds the connection to a room's multicast group. A connection
// belongs to at most one room; joining a new room leaves the previous one.
func (h *Hub) JoinRoom(c *Conn, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomLocked(c)
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Conn]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
	c.RoomID = roomID
}

// LeaveRoom removes the connection from its current room group.
func (h *Hub) LeaveRoom(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoomLocked(c)
}

func (h *Hub) removeFromRoomLocked(c *Conn) {
	if c.RoomID == "" {
		return
	}
	if set, ok := h.rooms[c.RoomID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, c.RoomID)
		}
	}
	c.RoomID = ""
}

// BroadcastAll sends an event to every connection.
func (h *Hub) BroadcastAll(event Event) {
	for _, c := range h.snapshotAll() {
		c.Send(event)
	}
}

// BroadcastRoom sends an event to every connection in the room's group.
func (h *Hub) BroadcastRoom(roomID string, event Event) {
	for _, c := range h.snapshotRoom(roomID) {
		c.Send(event)
	}
}

// SendToUser sends an event to every connection belonging to the user.
func (h *Hub) SendToUser(userID string, event Event) {
	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.byUser[userID]))
	for c := range h.byUser[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.Send(event)
	}
}

// RoomSize returns the number of connections in the room's group.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) snapshotAll() []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	return conns
}

func (h *Hub) snapshotRoom(roomID string) []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]*Conn, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		conns = append(conns, c)
	}
	return conns
}
