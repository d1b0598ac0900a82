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

// RoomRepository handles database operations related to rooms.
type RoomRepository struct {
	collection *mongo.Collection
}

// NewRoomRepository creates a new instance of RoomRepository.
func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{
		collection: db.Collection("rooms"),
	}
}

// CreateRoom inserts a new room into the database.
func (r *RoomRepository) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	room.CreatedAt = time.Now()
	room.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, room)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert room into database")
		return nil, fmt.Errorf("failed to insert room: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	room.ID = insertedID

	logrus.WithFields(logrus.Fields{
		"roomID": room.RoomID,
		"name":   room.Name,
	}).Info("Room created")
	return room, nil
}

// GetRoomByRoomID retrieves a room by its short room code.
func (r *RoomRepository) GetRoomByRoomID(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	err := r.collection.FindOne(ctx, bson.M{"room_id": roomID}).Decode(&room)
	if err != nil {
		// Wrapped so callers can tell a miss from a store failure.
		return nil, fmt.Errorf("failed to find room %s: %w", roomID, err)
	}
	return &room, nil
}

// GetRoomByName retrieves a room by its unique name.
func (r *RoomRepository) GetRoomByName(ctx context.Context, name string) (*models.Room, error) {
	var room models.Room
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&room)
	if err != nil {
		return nil, fmt.Errorf("failed to find room by name: %w", err)
	}
	return &room, nil
}

// UpdateRoomFields applies a partial $set update to the room document.
func (r *RoomRepository) UpdateRoomFields(ctx context.Context, roomID string, fields bson.M) error {
	fields["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"room_id": roomID}, bson.M{"$set": fields})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"roomID": roomID,
			"error":  err,
		}).Error("Failed to update room")
		return fmt.Errorf("failed to update room: %v", err)
	}
	return nil
}

// AddToUserList pushes a user onto one of the room's membership lists
// (read_only_users, invited_users, accessed_users), avoiding duplicates.
func (r *RoomRepository) AddToUserList(ctx context.Context, roomID, field string, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"room_id": roomID},
		bson.M{"$addToSet": bson.M{field: userID}, "$set": bson.M{"updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to add user to %s: %v", field, err)
	}
	return nil
}

// RemoveFromUserList pulls a user from one of the room's membership lists.
func (r *RoomRepository) RemoveFromUserList(ctx context.Context, roomID, field string, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"room_id": roomID},
		bson.M{"$pull": bson.M{field: userID}, "$set": bson.M{"updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to remove user from %s: %v", field, err)
	}
	return nil
}

// DeleteRoom removes the room document.
func (r *RoomRepository) DeleteRoom(ctx context.Context, roomID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"room_id": roomID})
	if err != nil {
		return fmt.Errorf("failed to delete room: %v", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("room %s not found", roomID)
	}
	logrus.WithField("roomID", roomID).Info("Room deleted")
	return nil
}

// ListRooms returns all public rooms plus the private rooms the user can
// access, newest first.
func (r *RoomRepository) ListRooms(ctx context.Context, userID primitive.ObjectID) ([]models.Room, error) {
	filter := bson.M{"$or": []bson.M{
		{"is_private": false},
		{"creator": userID},
		{"owner": userID},
		{"accessed_users": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %v", err)
	}
	defer cursor.Close(ctx)

	var rooms []models.Room
	for cursor.Next(ctx) {
		var room models.Room
		if err := cursor.Decode(&room); err != nil {
			return nil, fmt.Errorf("failed to decode room: %v", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}
