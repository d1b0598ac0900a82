package services

import (
	"context"
	"strings"

	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/ravin009/chatfun-sub000/internal/permissions"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMessagesPerRoom caps stored history per room. When the cap is
// reached the oldest message is deleted before the new one is inserted.
const MaxMessagesPerRoom = 70

// ChatService handles sending and reading room messages, including the
// retention policy.
type ChatService struct {
	chats ChatStore
	users UserStore
	rooms RoomStore
}

// NewChatService creates a new ChatService.
func NewChatService(chats ChatStore, users UserStore, rooms RoomStore) *ChatService {
	return &ChatService{chats: chats, users: users, rooms: rooms}
}

// SendMessage validates the sender against the room, applies retention
// and persists the message with the sender's display fields denormalized
// onto it. The caller is responsible for broadcasting the returned
// message to the room's socket group.
func (s *ChatService) SendMessage(ctx context.Context, senderID primitive.ObjectID, roomID, text, image string) (*models.Chat, error) {
	if strings.TrimSpace(text) == "" && image == "" {
		return nil, ErrEmptyMessage
	}

	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if sender.IsBanned {
		logrus.WithField("userID", senderID.Hex()).Warn("Banned user attempted to send a message")
		return nil, ErrBannedFromSending
	}

	room, err := s.rooms.GetRoomByRoomID(ctx, roomID)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	if !permissions.CanAccessPrivateRoom(senderID, room) {
		return nil, ErrPrivateRoomAccess
	}
	if room.IsReadOnly(senderID) {
		return nil, ErrReadOnly
	}

	if err := s.applyRetention(ctx, roomID); err != nil {
		return nil, err
	}

	msg := &models.Chat{
		RoomID:       roomID,
		UserID:       sender.ID,
		Nickname:     sender.Nickname,
		Avatar:       sender.Avatar,
		NameColor:    sender.NameColor,
		MessageColor: sender.MessageColor,
		Message:      text,
		Image:        image,
	}

	saved, err := s.chats.InsertMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	if err := s.users.IncrementCounters(ctx, senderID, 0, 1, 0); err != nil {
		logrus.WithField("userID", senderID.Hex()).Warnf("Failed to bump chat message count: %v", err)
	}
	return saved, nil
}

// SendMessageTo sends a room message addressed at a specific recipient,
// rejecting when that recipient has blocked the sender. Only the HTTP
// send path addresses recipients; plain room messages skip this check.
func (s *ChatService) SendMessageTo(ctx context.Context, senderID, recipientID primitive.ObjectID, roomID, text, image string) (*models.Chat, error) {
	recipient, err := s.users.GetUserByID(ctx, recipientID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if recipient.HasBlocked(senderID) {
		return nil, ErrBlockedByRecipient
	}
	return s.SendMessage(ctx, senderID, roomID, text, image)
}

// applyRetention deletes the oldest message once the room is at capacity,
// before the new insert. Count and delete are separate operations, so a
// concurrent burst can transiently overshoot; the next send converges.
func (s *ChatService) applyRetention(ctx context.Context, roomID string) error {
	count, err := s.chats.CountByRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if count >= MaxMessagesPerRoom {
		if err := s.chats.DeleteOldestByRoom(ctx, roomID); err != nil {
			return err
		}
	}
	return nil
}

// GetHistory returns the room's stored messages, oldest first. Private
// rooms require access.
func (s *ChatService) GetHistory(ctx context.Context, userID primitive.ObjectID, roomID string) ([]models.Chat, error) {
	room, err := s.rooms.GetRoomByRoomID(ctx, roomID)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	if !permissions.CanAccessPrivateRoom(userID, room) {
		return nil, ErrPrivateRoomAccess
	}
	return s.chats.GetMessagesByRoom(ctx, roomID)
}
