package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/ravin009/chatfun-sub000/internal/permissions"
	"github.com/ravin009/chatfun-sub000/internal/ws"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	roomIDAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomIDLength      = 8
	roomIDMaxAttempts = 5
)

// RoomService handles room lifecycle and administration.
type RoomService struct {
	rooms       RoomStore
	users       UserStore
	chats       ChatStore
	defaultRoom DefaultRoomStore
	hub         Broadcaster
}

// NewRoomService creates a new RoomService.
func NewRoomService(rooms RoomStore, users UserStore, chats ChatStore, defaultRoom DefaultRoomStore, hub Broadcaster) *RoomService {
	return &RoomService{
		rooms:       rooms,
		users:       users,
		chats:       chats,
		defaultRoom: defaultRoom,
		hub:         hub,
	}
}

// generateRoomID returns a fresh 8-character uppercase-alphanumeric code,
// retrying on the off chance of a collision.
func (s *RoomService) generateRoomID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < roomIDMaxAttempts; attempt++ {
		b := make([]byte, roomIDLength)
		for i := range b {
			b[i] = roomIDAlphabet[rand.Intn(len(roomIDAlphabet))]
		}
		code := string(b)

		_, err := s.rooms.GetRoomByRoomID(ctx, code)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		logrus.WithField("roomID", code).Warn("Room id collision, retrying")
	}
	return "", fmt.Errorf("failed to generate a unique room id")
}

// CreateRoom creates a room for the user. Gated on rating unless the
// creator holds a privileged role.
func (s *RoomService) CreateRoom(ctx context.Context, creatorID primitive.ObjectID, name string, isPrivate bool) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("room name is required")
	}

	creator, err := s.users.GetUserByID(ctx, creatorID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !permissions.CanCreateRoom(creator) {
		return nil, ErrInsufficientRating
	}

	if _, err := s.rooms.GetRoomByName(ctx, name); err == nil {
		return nil, ErrRoomNameTaken
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	roomID, err := s.generateRoomID(ctx)
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		RoomID:    roomID,
		Name:      name,
		IsPrivate: isPrivate,
		Creator:   creatorID,
		Owner:     creatorID,
	}
	return s.rooms.CreateRoom(ctx, room)
}

// GetRoom returns room details. Private rooms require access.
func (s *RoomService) GetRoom(ctx context.Context, userID primitive.ObjectID, roomID string) (*models.Room, error) {
	room, err := s.rooms.GetRoomByRoomID(ctx, roomID)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	if !permissions.CanAccessPrivateRoom(userID, room) {
		return nil, ErrPrivateRoomAccess
	}
	return room, nil
}

// ListRooms returns the rooms visible to the user.
func (s *RoomService) ListRooms(ctx context.Context, userID primitive.ObjectID) ([]models.Room, error) {
	return s.rooms.ListRooms(ctx, userID)
}

// AuthorizeJoin validates a socket join request: the room must exist and
// private rooms admit only the creator, the owner and accessed users.
func (s *RoomService) AuthorizeJoin(ctx context.Context, userID primitive.ObjectID, roomID string) (*models.Room, error) {
	room, err := s.rooms.GetRoomByRoomID(ctx, roomID)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	if !permissions.CanAccessPrivateRoom(userID, room) {
		return nil, ErrPrivateRoomAccess
	}
	return room, nil
}

// TransferOwnership moves the owner role to another user.
func (s *RoomService) TransferOwnership(ctx context.Context, actorID primitive.ObjectID, roomID string, newOwnerID primitive.ObjectID) error {
	actor, room, err := s.actorAndRoom(ctx, actorID, roomID)
	if err != nil {
		return err
	}
	if !permissions.CanManageRoom(actor, room) {
		return ErrNotAuthorized
	}
	if _, err := s.users.GetUserByID(ctx, newOwnerID); err != nil {
		return ErrUserNotFound
	}
	return s.rooms.UpdateRoomFields(ctx, roomID, bson.M{"owner": newOwnerID})
}

// SetPrivacy toggles the room's private flag.
func (s *RoomService) SetPrivacy(ctx context.Context, actorID primitive.ObjectID, roomID string, isPrivate bool) error {
	actor, room, err := s.actorAndRoom(ctx, actorID, roomID)
	if err != nil {
		return err
	}
	if !permissions.CanManageRoom(actor, room) {
		return ErrNotAuthorized
	}
	return s.rooms.UpdateRoomFields(ctx, roomID, bson.M{"is_private": isPrivate})
}

// SetBackgroundColor changes the room's background color.
func (s *RoomService) SetBackgroundColor(ctx context.Context, actorID primitive.ObjectID, roomID, color string) error {
	actor, room, err := s.actorAndRoom(ctx, actorID, roomID)
	if err != nil {
		return err
	}
	if !permissions.CanManageRoom(actor, room) {
		return ErrNotAuthorized
	}
	return s.rooms.UpdateRoomFields(ctx, roomID, bson.M{"background_color": color})
}

// SetReadOnly adds or removes a user on the room's read-only list.
func (s *RoomService) SetReadOnly(ctx context.Context, actorID primitive.ObjectID, roomID string, targetID primitive.ObjectID, readOnly bool) error {
	actor, room, err := s.actorAndRoom(ctx, actorID, roomID)
	if err != nil {
		return err
	}
	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return ErrUserNotFound
	}
	if !permissions.CanMarkReadOnly(actor, target, room) {
		return ErrNotAuthorized
	}

	if readOnly {
		return s.rooms.AddToUserList(ctx, roomID, "read_only_users", targetID)
	}
	return s.rooms.RemoveFromUserList(ctx, roomID, "read_only_users", targetID)
}

// Invite adds a user to the room's invited list and pushes a roomInvite
// event to their connections.
func (s *RoomService) Invite(ctx context.Context, actorID primitive.ObjectID, roomID string, inviteeID primitive.ObjectID) error {
	actor, room, err := s.actorAndRoom(ctx, actorID, roomID)
	if err != nil {
		return err
	}
	if !permissions.CanManageRoom(actor, room) {
		return ErrNotAuthorized
	}
	if _, err := s.users.GetUserByID(ctx, inviteeID); err != nil {
		return ErrUserNotFound
	}

	if err := s.rooms.AddToUserList(ctx, roomID, "invited_users", inviteeID); err != nil {
		return err
	}

	s.hub.SendToUser(inviteeID.Hex(), ws.Event{
		Event: ws.EventRoomInvite,
		Data:  ws.RoomInvitePayload{RoomID: room.RoomID, RoomName: room.Name},
	})
	return nil
}

// AcceptInvitation moves the user from the invited list to the accessed
// list, granting private-room entry.
func (s *RoomService) AcceptInvitation(ctx context.Context, userID primitive.ObjectID, roomID string) error {
	room, err := s.rooms.GetRoomByRoomID(ctx, roomID)
	if err != nil {
		return ErrRoomNotFound
	}
	if !room.IsInvited(userID) {
		return ErrNotInvited
	}

	if err := s.rooms.RemoveFromUserList(ctx, roomID, "invited_users", userID); err != nil {
		return err
	}
	return s.rooms.AddToUserList(ctx, roomID, "accessed_users", userID)
}

// DeleteRoom removes the room and its entire chat history. Only the
// creator or an Admin may delete; a transferred owner may not.
func (s *RoomService) DeleteRoom(ctx context.Context, actorID primitive.ObjectID, roomID string) error {
	actor, room, err := s.actorAndRoom(ctx, actorID, roomID)
	if err != nil {
		return err
	}
	if !permissions.CanDeleteRoom(actor, room) {
		return ErrNotAuthorized
	}

	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	if err := s.chats.DeleteByRoom(ctx, roomID); err != nil {
		logrus.WithField("roomID", roomID).Errorf("Failed to cascade chat deletion: %v", err)
	}
	return nil
}

// GetDefaultRoom returns the room new users are auto-joined to.
func (s *RoomService) GetDefaultRoom(ctx context.Context) (*models.DefaultRoom, error) {
	return s.defaultRoom.GetDefaultRoom(ctx)
}

// SetDefaultRoom points the default-room singleton at an existing room.
func (s *RoomService) SetDefaultRoom(ctx context.Context, roomID string) error {
	room, err := s.rooms.GetRoomByRoomID(ctx, roomID)
	if err != nil {
		return ErrRoomNotFound
	}
	return s.defaultRoom.SetDefaultRoom(ctx, &models.DefaultRoom{RoomID: room.RoomID, Name: room.Name})
}

func (s *RoomService) actorAndRoom(ctx context.Context, actorID primitive.ObjectID, roomID string) (*models.User, *models.Room, error) {
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, nil, ErrUserNotFound
	}
	room, err := s.rooms.GetRoomByRoomID(ctx, roomID)
	if err != nil {
		return nil, nil, ErrRoomNotFound
	}
	return actor, room, nil
}
