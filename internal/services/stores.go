package services

import (
	"context"

	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/ravin009/chatfun-sub000/internal/ws"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store interfaces the services depend on. The repository package
// provides the Mongo-backed implementations; tests substitute in-memory
// fakes.

// UserStore is the persistence surface for user records.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*models.User, error)
	UpdateUserFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	SetPresence(ctx context.Context, id primitive.ObjectID, isOnline bool, roomID string) error
	CountOnlineByRoomAndGender(ctx context.Context, roomID string) (male int64, female int64, err error)
	FindOnlineByRoom(ctx context.Context, roomID string) ([]models.User, error)
	IncrementCounters(ctx context.Context, id primitive.ObjectID, rating, chatMessages, privateMessages int) error
	SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error
	BlockUser(ctx context.Context, userID, targetID primitive.ObjectID) error
	UnblockUser(ctx context.Context, userID, targetID primitive.ObjectID) error
	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	RemoveFriend(ctx context.Context, userID1, userID2 primitive.ObjectID) error
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	ClearStalePresence(ctx context.Context) (int64, error)
}

// RoomStore is the persistence surface for room records.
type RoomStore interface {
	CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error)
	GetRoomByRoomID(ctx context.Context, roomID string) (*models.Room, error)
	GetRoomByName(ctx context.Context, name string) (*models.Room, error)
	UpdateRoomFields(ctx context.Context, roomID string, fields bson.M) error
	AddToUserList(ctx context.Context, roomID, field string, userID primitive.ObjectID) error
	RemoveFromUserList(ctx context.Context, roomID, field string, userID primitive.ObjectID) error
	DeleteRoom(ctx context.Context, roomID string) error
	ListRooms(ctx context.Context, userID primitive.ObjectID) ([]models.Room, error)
}

// ChatStore is the persistence surface for room messages.
type ChatStore interface {
	InsertMessage(ctx context.Context, msg *models.Chat) (*models.Chat, error)
	CountByRoom(ctx context.Context, roomID string) (int64, error)
	DeleteOldestByRoom(ctx context.Context, roomID string) error
	GetMessagesByRoom(ctx context.Context, roomID string) ([]models.Chat, error)
	DeleteByRoom(ctx context.Context, roomID string) error
}

// PrivateMessageStore is the persistence surface for direct messages.
type PrivateMessageStore interface {
	InsertMessage(ctx context.Context, msg *models.PrivateMessage) (*models.PrivateMessage, error)
	CountByPair(ctx context.Context, a, b primitive.ObjectID) (int64, error)
	DeleteOldestByPair(ctx context.Context, a, b primitive.ObjectID) error
	GetConversation(ctx context.Context, a, b primitive.ObjectID) ([]models.PrivateMessage, error)
	MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error
	GetMessagesForUser(ctx context.Context, userID primitive.ObjectID) ([]models.PrivateMessage, error)
}

// OtpStore is the persistence surface for password-reset codes.
type OtpStore interface {
	UpsertOtp(ctx context.Context, email, code string) error
	VerifyOtp(ctx context.Context, email, code string) error
	DeleteByEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// DefaultRoomStore is the persistence surface for the default-room singleton.
type DefaultRoomStore interface {
	GetDefaultRoom(ctx context.Context) (*models.DefaultRoom, error)
	SetDefaultRoom(ctx context.Context, room *models.DefaultRoom) error
}

// Broadcaster is the socket-layer publishing surface injected into
// services that emit real-time events.
type Broadcaster interface {
	BroadcastAll(event ws.Event)
	BroadcastRoom(roomID string, event ws.Event)
	SendToUser(userID string, event ws.Event)
}
