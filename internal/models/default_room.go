package models

// DefaultRoom is a singleton document naming the room new and returning
// users are auto-joined to.
type DefaultRoom struct {
	RoomID string `bson:"room_id" json:"roomId"`
	Name   string `bson:"name" json:"name"`
}
