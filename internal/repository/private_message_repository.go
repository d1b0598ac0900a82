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

// PrivateMessageRepository handles database operations for direct messages.
type PrivateMessageRepository struct {
	collection *mongo.Collection
}

// NewPrivateMessageRepository creates a new instance of PrivateMessageRepository.
func NewPrivateMessageRepository(db *mongo.Database) *PrivateMessageRepository {
	return &PrivateMessageRepository{collection: db.Collection("private_messages")}
}

// pairFilter matches messages between the two users in either direction.
func pairFilter(a, b primitive.ObjectID) bson.M {
	return bson.M{"$or": []bson.M{
		{"sender_id": a, "recipient_id": b},
		{"sender_id": b, "recipient_id": a},
	}}
}

// InsertMessage persists a private message.
func (r *PrivateMessageRepository) InsertMessage(ctx context.Context, msg *models.PrivateMessage) (*models.PrivateMessage, error) {
	msg.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert private message")
		return nil, fmt.Errorf("failed to insert private message: %v", err)
	}
	msg.ID = result.InsertedID.(primitive.ObjectID)
	return msg, nil
}

// CountByPair returns the number of stored messages between the two users,
// regardless of direction.
func (r *PrivateMessageRepository) CountByPair(ctx context.Context, a, b primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, pairFilter(a, b))
	if err != nil {
		return 0, fmt.Errorf("failed to count private messages: %v", err)
	}
	return count, nil
}

// DeleteOldestByPair removes the single oldest message between the two users.
func (r *PrivateMessageRepository) DeleteOldestByPair(ctx context.Context, a, b primitive.ObjectID) error {
	opts := options.FindOneAndDelete().SetSort(bson.D{{Key: "created_at", Value: 1}})
	err := r.collection.FindOneAndDelete(ctx, pairFilter(a, b), opts).Err()
	if err != nil && err != mongo.ErrNoDocuments {
		return fmt.Errorf("failed to delete oldest private message: %v", err)
	}
	return nil
}

// GetConversation returns all messages between the two users, oldest first.
func (r *PrivateMessageRepository) GetConversation(ctx context.Context, a, b primitive.ObjectID) ([]models.PrivateMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, pairFilter(a, b), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation: %v", err)
	}
	defer cursor.Close(ctx)

	var messages []models.PrivateMessage
	for cursor.Next(ctx) {
		var msg models.PrivateMessage
		if err := cursor.Decode(&msg); err != nil {
			return nil, fmt.Errorf("failed to decode private message: %v", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// MarkRead flips the read flag on a message, but only if the caller is its
// recipient.
func (r *PrivateMessageRepository) MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark message read: %v", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("message %s not found for recipient", id.Hex())
	}
	return nil
}

// GetMessagesForUser returns every message the user sent or received,
// newest first. Used to build the conversation list.
func (r *PrivateMessageRepository) GetMessagesForUser(ctx context.Context, userID primitive.ObjectID) ([]models.PrivateMessage, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender_id": userID},
		{"recipient_id": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages for user: %v", err)
	}
	defer cursor.Close(ctx)

	var messages []models.PrivateMessage
	for cursor.Next(ctx) {
		var msg models.PrivateMessage
		if err := cursor.Decode(&msg); err != nil {
			return nil, fmt.Errorf("failed to decode private message: %v", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
