package services

import (
	"context"

	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/ravin009/chatfun-sub000/internal/ws"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PresenceService maintains the per-user online flag and current room,
// and fans the resulting state out over the socket layer.
type PresenceService struct {
	users UserStore
	hub   Broadcaster
}

// NewPresenceService creates a new PresenceService.
func NewPresenceService(users UserStore, hub Broadcaster) *PresenceService {
	return &PresenceService{users: users, hub: hub}
}

// MarkOnline flags the user online and announces it to every connection.
// Idempotent: repeated calls just rewrite the same flag and re-broadcast.
// If the user is currently associated with a room, that room's counts and
// member list are recomputed and re-emitted.
func (s *PresenceService) MarkOnline(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	if err := s.users.SetPresence(ctx, userID, true, user.RoomID); err != nil {
		return err
	}

	s.hub.BroadcastAll(ws.Event{
		Event: ws.EventUserStatusChanged,
		Data:  ws.UserStatusPayload{UserID: userID.Hex(), IsOnline: true},
	})

	if user.RoomID != "" {
		s.BroadcastRoomState(ctx, user.RoomID)
	}
	return nil
}

// MarkOffline flags the user offline, clears their room association and
// announces the transition. If the user was in a room, the room's counts
// and member list are recomputed after the clear.
func (s *PresenceService) MarkOffline(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	if err := s.users.SetPresence(ctx, userID, false, ""); err != nil {
		return err
	}

	s.hub.BroadcastAll(ws.Event{
		Event: ws.EventUserStatusChanged,
		Data:  ws.UserStatusPayload{UserID: userID.Hex(), IsOnline: false},
	})

	if user.RoomID != "" {
		s.BroadcastRoomState(ctx, user.RoomID)
	}
	return nil
}

// EnterRoom records the user as online in the given room, announces the
// status change to the room and re-emits the room's aggregate state. The
// caller is responsible for having authorized the join and added the
// connection to the room's broadcast group.
func (s *PresenceService) EnterRoom(ctx context.Context, userID primitive.ObjectID, roomID string) error {
	if err := s.users.SetPresence(ctx, userID, true, roomID); err != nil {
		return err
	}

	s.hub.BroadcastRoom(roomID, ws.Event{
		Event: ws.EventUserStatusChanged,
		Data:  ws.UserStatusPayload{UserID: userID.Hex(), IsOnline: true},
	})
	s.BroadcastRoomState(ctx, roomID)
	return nil
}

// ExitRoom clears the user's room association while keeping them online,
// then re-emits the room's aggregate state so remaining members see the
// departure.
func (s *PresenceService) ExitRoom(ctx context.Context, userID primitive.ObjectID, roomID string) error {
	if err := s.users.SetPresence(ctx, userID, true, ""); err != nil {
		return err
	}

	s.hub.BroadcastRoom(roomID, ws.Event{
		Event: ws.EventUserStatusChanged,
		Data:  ws.UserStatusPayload{UserID: userID.Hex(), IsOnline: true},
	})
	s.BroadcastRoomState(ctx, roomID)
	return nil
}

// BroadcastRoomState recomputes the room's gender counts and online
// member list from persisted state and emits both to the room's group.
// The counts are a full recomputation at call time, so concurrent joins
// and leaves converge on the last write.
func (s *PresenceService) BroadcastRoomState(ctx context.Context, roomID string) {
	male, female, err := s.users.CountOnlineByRoomAndGender(ctx, roomID)
	if err != nil {
		logrus.WithField("roomID", roomID).Errorf("Failed to compute user counts: %v", err)
		return
	}

	s.hub.BroadcastRoom(roomID, ws.Event{
		Event: ws.EventUserCounts,
		Data:  ws.UserCountsPayload{RoomID: roomID, MaleCount: male, FemaleCount: female},
	})

	users, err := s.users.FindOnlineByRoom(ctx, roomID)
	if err != nil {
		logrus.WithField("roomID", roomID).Errorf("Failed to fetch room user list: %v", err)
		return
	}

	list := make([]models.PublicUser, 0, len(users))
	for i := range users {
		list = append(list, users[i].Public())
	}

	s.hub.BroadcastRoom(roomID, ws.Event{
		Event: ws.EventUserList,
		Data: map[string]interface{}{
			"roomId": roomID,
			"users":  list,
		},
	})
}

// ResetAll clears every persisted online flag. Run once at startup since
// in-memory connection state does not survive a process restart.
func (s *PresenceService) ResetAll(ctx context.Context) error {
	cleared, err := s.users.ClearStalePresence(ctx)
	if err != nil {
		return err
	}
	if cleared > 0 {
		logrus.WithField("cleared", cleared).Info("Reset stale presence flags")
	}
	return nil
}
