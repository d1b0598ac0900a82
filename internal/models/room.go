package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Room is a named chat channel. RoomID is a short server-generated code
// used on the wire; Creator is permanent while Owner can be transferred.
// For private rooms, posting and joining is limited to the creator, the
// owner and users listed in AccessedUsers.
type Room struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	RoomID          string               `bson:"room_id" json:"roomId"`
	Name            string               `bson:"name" json:"name"`
	IsPrivate       bool                 `bson:"is_private" json:"isPrivate"`
	Creator         primitive.ObjectID   `bson:"creator" json:"creator"`
	Owner           primitive.ObjectID   `bson:"owner" json:"owner"`
	ReadOnlyUsers   []primitive.ObjectID `bson:"read_only_users,omitempty" json:"readOnlyUsers,omitempty"`
	InvitedUsers    []primitive.ObjectID `bson:"invited_users,omitempty" json:"invitedUsers,omitempty"`
	AccessedUsers   []primitive.ObjectID `bson:"accessed_users,omitempty" json:"accessedUsers,omitempty"`
	BackgroundColor string               `bson:"background_color,omitempty" json:"backgroundColor,omitempty"`
	CreatedAt       time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updated_at" json:"updatedAt"`
}

// HasAccess reports whether the user id is in the room's accessed list.
func (r *Room) HasAccess(id primitive.ObjectID) bool {
	for _, a := range r.AccessedUsers {
		if a == id {
			return true
		}
	}
	return false
}

// IsInvited reports whether the user id has a pending invitation.
func (r *Room) IsInvited(id primitive.ObjectID) bool {
	for _, a := range r.InvitedUsers {
		if a == id {
			return true
		}
	}
	return false
}

// IsReadOnly reports whether the user id is barred from posting.
func (r *Room) IsReadOnly(id primitive.ObjectID) bool {
	for _, a := range r.ReadOnlyUsers {
		if a == id {
			return true
		}
	}
	return false
}
