package repository

import (
	"context"
	"fmt"

	"github.com/ravin009/chatfun-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultRoomRepository stores the singleton default-room document.
type DefaultRoomRepository struct {
	collection *mongo.Collection
}

// NewDefaultRoomRepository creates a new instance of DefaultRoomRepository.
func NewDefaultRoomRepository(db *mongo.Database) *DefaultRoomRepository {
	return &DefaultRoomRepository{collection: db.Collection("default_room")}
}

// GetDefaultRoom fetches the default room, if one is configured.
func (r *DefaultRoomRepository) GetDefaultRoom(ctx context.Context) (*models.DefaultRoom, error) {
	var room models.DefaultRoom
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&room)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch default room: %v", err)
	}
	return &room, nil
}

// SetDefaultRoom replaces the singleton with the given room.
func (r *DefaultRoomRepository) SetDefaultRoom(ctx context.Context, room *models.DefaultRoom) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{}, room, opts)
	if err != nil {
		return fmt.Errorf("failed to set default room: %v", err)
	}
	return nil
}
