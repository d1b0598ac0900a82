package services

import (
	"context"
	"testing"

	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/ravin009/chatfun-sub000/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMarkOnlineIsIdempotent(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Nickname: "alice", Gender: "female"}
	users := newFakeUserStore(user)
	hub := newFakeHub()
	svc := NewPresenceService(users, hub)

	require.NoError(t, svc.MarkOnline(context.Background(), user.ID))
	require.NoError(t, svc.MarkOnline(context.Background(), user.ID))

	updated, _ := users.GetUserByID(context.Background(), user.ID)
	assert.True(t, updated.IsOnline)

	// Each call re-broadcasts; redundant but harmless.
	require.Len(t, hub.allEvents, 2)
	for _, e := range hub.allEvents {
		assert.Equal(t, ws.EventUserStatusChanged, e.Event)
		assert.Equal(t, ws.UserStatusPayload{UserID: user.ID.Hex(), IsOnline: true}, e.Data)
	}
}

func TestMarkOfflineClearsRoomAndRebroadcastsCounts(t *testing.T) {
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Nickname: "alice",
		Gender:   "female",
		IsOnline: true,
		RoomID:   "AAAA1111",
	}
	users := newFakeUserStore(user)
	hub := newFakeHub()
	svc := NewPresenceService(users, hub)

	require.NoError(t, svc.MarkOffline(context.Background(), user.ID))

	updated, _ := users.GetUserByID(context.Background(), user.ID)
	assert.False(t, updated.IsOnline)
	assert.Empty(t, updated.RoomID)

	counts := hub.roomEvents("AAAA1111", ws.EventUserCounts)
	require.Len(t, counts, 1, "the vacated room should get fresh counts")
	assert.Equal(t, ws.UserCountsPayload{RoomID: "AAAA1111"}, counts[0].Data)
}

func TestMarkOfflineWithoutRoomSkipsRoomBroadcast(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), IsOnline: true}
	hub := newFakeHub()
	svc := NewPresenceService(newFakeUserStore(user), hub)

	require.NoError(t, svc.MarkOffline(context.Background(), user.ID))
	assert.Empty(t, hub.roomWise)
}

func TestMarkOnlineUnknownUser(t *testing.T) {
	svc := NewPresenceService(newFakeUserStore(), newFakeHub())
	err := svc.MarkOnline(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnterThenExitRoom(t *testing.T) {
	male := &models.User{ID: primitive.NewObjectID(), Nickname: "bob", Gender: "male", IsOnline: true, RoomID: "AAAA1111"}
	joiner := &models.User{ID: primitive.NewObjectID(), Nickname: "alice", Gender: "female"}
	users := newFakeUserStore(male, joiner)
	hub := newFakeHub()
	svc := NewPresenceService(users, hub)

	require.NoError(t, svc.EnterRoom(context.Background(), joiner.ID, "AAAA1111"))

	updated, _ := users.GetUserByID(context.Background(), joiner.ID)
	assert.True(t, updated.IsOnline)
	assert.Equal(t, "AAAA1111", updated.RoomID)

	counts := hub.roomEvents("AAAA1111", ws.EventUserCounts)
	require.Len(t, counts, 1)
	assert.Equal(t, ws.UserCountsPayload{RoomID: "AAAA1111", MaleCount: 1, FemaleCount: 1}, counts[0].Data)

	require.NoError(t, svc.ExitRoom(context.Background(), joiner.ID, "AAAA1111"))

	updated, _ = users.GetUserByID(context.Background(), joiner.ID)
	assert.Empty(t, updated.RoomID, "leaving should clear the persisted room")
	assert.True(t, updated.IsOnline, "leaving a room keeps the user online")

	counts = hub.roomEvents("AAAA1111", ws.EventUserCounts)
	require.Len(t, counts, 2)
	assert.Equal(t, ws.UserCountsPayload{RoomID: "AAAA1111", MaleCount: 1}, counts[1].Data,
		"counts after leave should reflect the departure")
}

func TestBroadcastRoomStateEmitsUserList(t *testing.T) {
	member := &models.User{ID: primitive.NewObjectID(), Nickname: "bob", Gender: "male", IsOnline: true, RoomID: "AAAA1111"}
	hub := newFakeHub()
	svc := NewPresenceService(newFakeUserStore(member), hub)

	svc.BroadcastRoomState(context.Background(), "AAAA1111")

	lists := hub.roomEvents("AAAA1111", ws.EventUserList)
	require.Len(t, lists, 1)
	payload := lists[0].Data.(map[string]interface{})
	assert.Equal(t, "AAAA1111", payload["roomId"])
	users := payload["users"].([]models.PublicUser)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Nickname)
}

func TestResetAllClearsEveryOnlineFlag(t *testing.T) {
	a := &models.User{ID: primitive.NewObjectID(), IsOnline: true, RoomID: "AAAA1111"}
	b := &models.User{ID: primitive.NewObjectID(), IsOnline: true}
	users := newFakeUserStore(a, b)
	svc := NewPresenceService(users, newFakeHub())

	require.NoError(t, svc.ResetAll(context.Background()))

	for _, id := range []primitive.ObjectID{a.ID, b.ID} {
		u, _ := users.GetUserByID(context.Background(), id)
		assert.False(t, u.IsOnline)
		assert.Empty(t, u.RoomID)
	}
}
