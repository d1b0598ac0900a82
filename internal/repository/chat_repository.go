package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatRepository handles database operations for room messages.
type ChatRepository struct {
	collection *mongo.Collection
}

// NewChatRepository creates a new instance of ChatRepository.
func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{collection: db.Collection("chats")}
}

// InsertMessage persists a room message.
func (r *ChatRepository) InsertMessage(ctx context.Context, msg *models.Chat) (*models.Chat, error) {
	msg.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert chat message")
		return nil, fmt.Errorf("failed to insert chat message: %v", err)
	}
	msg.ID = result.InsertedID.(primitive.ObjectID)
	return msg, nil
}

// CountByRoom returns the number of stored messages for the room.
func (r *ChatRepository) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"room_id": roomID})
	if err != nil {
		return 0, fmt.Errorf("failed to count chat messages: %v", err)
	}
	return count, nil
}

// DeleteOldestByRoom removes the single oldest message in the room.
func (r *ChatRepository) DeleteOldestByRoom(ctx context.Context, roomID string) error {
	opts := options.FindOneAndDelete().SetSort(bson.D{{Key: "created_at", Value: 1}})
	err := r.collection.FindOneAndDelete(ctx, bson.M{"room_id": roomID}, opts).Err()
	if err != nil && err != mongo.ErrNoDocuments {
		return fmt.Errorf("failed to delete oldest chat message: %v", err)
	}
	return nil
}

// GetMessagesByRoom returns the room's messages, oldest first.
func (r *ChatRepository) GetMessagesByRoom(ctx context.Context, roomID string) ([]models.Chat, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat messages: %v", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Chat
	for cursor.Next(ctx) {
		var msg models.Chat
		if err := cursor.Decode(&msg); err != nil {
			return nil, fmt.Errorf("failed to decode chat message: %v", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// DeleteByRoom removes every message in the room. Used when a room is deleted.
func (r *ChatRepository) DeleteByRoom(ctx context.Context, roomID string) error {
	result, err := r.collection.DeleteMany(ctx, bson.M{"room_id": roomID})
	if err != nil {
		return fmt.Errorf("failed to delete chat messages for room %s: %v", roomID, err)
	}
	logrus.WithFields(logrus.Fields{
		"roomID":  roomID,
		"deleted": result.DeletedCount,
	}).Info("Room chat history deleted")
	return nil
}
