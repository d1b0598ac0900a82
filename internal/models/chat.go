package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is a single room message. Nickname, avatar and color fields are
// copied from the sender's profile at send time so old messages keep the
// look they were posted with; profile edits do not rewrite history.
type Chat struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomID       string             `bson:"room_id" json:"roomId"`
	UserID       primitive.ObjectID `bson:"user_id" json:"userId"`
	Nickname     string             `bson:"nickname" json:"nickname"`
	Avatar       string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	NameColor    string             `bson:"name_color,omitempty" json:"nameColor,omitempty"`
	MessageColor string             `bson:"message_color,omitempty" json:"messageColor,omitempty"`
	Message      string             `bson:"message,omitempty" json:"message,omitempty"`
	Image        string             `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
}
