package services

import "errors"

// Sentinel errors handlers map onto HTTP statuses (or socket error
// events). The messages are user-facing: clients surface them directly.
var (
	ErrUserNotFound       = errors.New("User not found")
	ErrRoomNotFound       = errors.New("Room not found")
	ErrRoomNameTaken      = errors.New("Room name is already taken")
	ErrBannedFromSending  = errors.New("You are banned from sending messages.")
	ErrPrivateRoomAccess  = errors.New("You do not have access to this private room")
	ErrReadOnly           = errors.New("You are not allowed to post in this room")
	ErrBlockedByRecipient = errors.New("You cannot message this user")
	ErrMessageTooLong     = errors.New("Message is too long")
	ErrEmptyMessage       = errors.New("Message cannot be empty")
	ErrInsufficientRating = errors.New("Your rating is too low to create a room")
	ErrNotAuthorized      = errors.New("You are not allowed to perform this action")
	ErrNotInvited         = errors.New("You have not been invited to this room")
)
