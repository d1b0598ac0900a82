package ws

// Client-to-server event names.
const (
	EventUserOnline     = "userOnline"
	EventUserOffline    = "userOffline"
	EventJoinRoom       = "joinRoom"
	EventLeaveRoom      = "leaveRoom"
	EventMessage        = "message"
	EventPrivateMessage = "privateMessage"
)

// Server-to-client event names.
const (
	EventUserStatusChanged          = "userStatusChanged"
	EventUserCounts                 = "userCounts"
	EventUserList                   = "userList"
	EventPrivateMessageNotification = "privateMessageNotification"
	EventRoomInvite                 = "roomInvite"
	EventError                      = "error"
)

// Event is the JSON envelope for every socket frame in both directions.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// UserStatusPayload announces an online/offline transition.
type UserStatusPayload struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// UserCountsPayload carries the per-room gender aggregate counts.
type UserCountsPayload struct {
	RoomID      string `json:"roomId"`
	MaleCount   int64  `json:"maleCount"`
	FemaleCount int64  `json:"femaleCount"`
}

// RoomInvitePayload notifies a user they were invited to a private room.
type RoomInvitePayload struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
}

// ErrorPayload is the best-effort error reply to the originating connection.
type ErrorPayload struct {
	Message string `json:"message"`
}
