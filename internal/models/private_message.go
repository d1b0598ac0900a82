package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrivateMessage is a point-to-point message between two users,
// independent of room membership.
type PrivateMessage struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID    primitive.ObjectID `bson:"sender_id" json:"senderId"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipientId"`
	Message     string             `bson:"message" json:"message"`
	IsRead      bool               `bson:"is_read" json:"isRead"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
