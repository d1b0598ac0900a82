package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/ravin009/chatfun-sub000/internal/ws"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// MaxPrivateMessageLength caps the text in characters, not bytes.
	MaxPrivateMessageLength = 250
	// MaxMessagesPerConversation caps stored history per unordered
	// (sender, recipient) pair.
	MaxMessagesPerConversation = 70
)

// PrivateMessageService handles direct messages between two users.
type PrivateMessageService struct {
	messages PrivateMessageStore
	users    UserStore
	hub      Broadcaster
}

// NewPrivateMessageService creates a new PrivateMessageService.
func NewPrivateMessageService(messages PrivateMessageStore, users UserStore, hub Broadcaster) *PrivateMessageService {
	return &PrivateMessageService{messages: messages, users: users, hub: hub}
}

// Send validates, applies per-conversation retention and persists a
// private message, then bumps the sender's rating and message counter.
func (s *PrivateMessageService) Send(ctx context.Context, senderID, recipientID primitive.ObjectID, text string) (*models.PrivateMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxPrivateMessageLength {
		return nil, ErrMessageTooLong
	}

	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if sender.IsBanned {
		logrus.WithField("userID", senderID.Hex()).Warn("Banned user attempted to send a private message")
		return nil, ErrBannedFromSending
	}

	recipient, err := s.users.GetUserByID(ctx, recipientID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if recipient.HasBlocked(senderID) {
		return nil, ErrBlockedByRecipient
	}

	count, err := s.messages.CountByPair(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if count >= MaxMessagesPerConversation {
		if err := s.messages.DeleteOldestByPair(ctx, senderID, recipientID); err != nil {
			return nil, err
		}
	}

	msg := &models.PrivateMessage{
		SenderID:    senderID,
		RecipientID: recipientID,
		Message:     text,
	}
	saved, err := s.messages.InsertMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	if err := s.users.IncrementCounters(ctx, senderID, 1, 0, 1); err != nil {
		logrus.WithField("userID", senderID.Hex()).Warnf("Failed to bump private message counters: %v", err)
	}
	return saved, nil
}

// Deliver fans a persisted private message out over the socket layer: a
// global broadcast clients filter on, plus a targeted notification to the
// recipient's own connections.
func (s *PrivateMessageService) Deliver(msg *models.PrivateMessage) {
	s.hub.BroadcastAll(ws.Event{Event: ws.EventPrivateMessage, Data: msg})
	s.hub.SendToUser(msg.RecipientID.Hex(), ws.Event{
		Event: ws.EventPrivateMessageNotification,
		Data:  msg,
	})
}

// GetConversation returns the stored messages between the two users,
// oldest first.
func (s *PrivateMessageService) GetConversation(ctx context.Context, userID, otherID primitive.ObjectID) ([]models.PrivateMessage, error) {
	return s.messages.GetConversation(ctx, userID, otherID)
}

// GetMessagesForUser returns every message the user sent or received.
func (s *PrivateMessageService) GetMessagesForUser(ctx context.Context, userID primitive.ObjectID) ([]models.PrivateMessage, error) {
	return s.messages.GetMessagesForUser(ctx, userID)
}

// MarkRead flags a received message as read.
func (s *PrivateMessageService) MarkRead(ctx context.Context, messageID, recipientID primitive.ObjectID) error {
	return s.messages.MarkRead(ctx, messageID, recipientID)
}
