package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role tags a user may carry. A user always has at least RoleUser.
const (
	RoleUser      = "User"
	RoleAdmin     = "Admin"
	RoleModerator = "Moderator"
	RoleSuperMod  = "Super Moderator"
	RoleCoAdmin   = "Co-Admin"
)

// User represents a chat user account. Presence fields (IsOnline, RoomID)
// are mutated continuously by the socket layer; RoomID is empty when the
// user is not in any room.
type User struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UUID                string               `bson:"uuid" json:"uuid"`
	Nickname            string               `bson:"nickname" json:"nickname"`
	Email               string               `bson:"email" json:"email"`
	HashedPassword      string               `bson:"hashed_password" json:"-"`
	Gender              string               `bson:"gender" json:"gender"`
	Avatar              string               `bson:"avatar,omitempty" json:"avatar,omitempty"`
	NameColor           string               `bson:"name_color,omitempty" json:"nameColor,omitempty"`
	MessageColor        string               `bson:"message_color,omitempty" json:"messageColor,omitempty"`
	IsOnline            bool                 `bson:"is_online" json:"isOnline"`
	RoomID              string               `bson:"room_id,omitempty" json:"roomId,omitempty"`
	Roles               []string             `bson:"roles" json:"roles"`
	IsBanned            bool                 `bson:"is_banned" json:"isBanned"`
	Friends             []primitive.ObjectID `bson:"friends,omitempty" json:"friends,omitempty"`
	BlockedUsers        []primitive.ObjectID `bson:"blocked_users,omitempty" json:"blockedUsers,omitempty"`
	Rating              int                  `bson:"rating" json:"rating"`
	ChatMessageCount    int                  `bson:"chat_message_count" json:"chatMessageCount"`
	PrivateMessageCount int                  `bson:"private_message_count" json:"privateMessageCount"`
	CreatedAt           time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updated_at" json:"updatedAt"`
}

// HasRole reports whether the user carries the given role tag.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasBlocked reports whether the user has blocked the given user id.
func (u *User) HasBlocked(id primitive.ObjectID) bool {
	for _, b := range u.BlockedUsers {
		if b == id {
			return true
		}
	}
	return false
}

// PublicUser is the profile shape exposed to other users.
type PublicUser struct {
	ID        primitive.ObjectID `json:"id"`
	Nickname  string             `json:"nickname"`
	Gender    string             `json:"gender"`
	Avatar    string             `json:"avatar,omitempty"`
	NameColor string             `json:"nameColor,omitempty"`
	IsOnline  bool               `json:"isOnline"`
	Rating    int                `json:"rating"`
}

// Public strips private fields from a full user record.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Nickname:  u.Nickname,
		Gender:    u.Gender,
		Avatar:    u.Avatar,
		NameColor: u.NameColor,
		IsOnline:  u.IsOnline,
		Rating:    u.Rating,
	}
}
