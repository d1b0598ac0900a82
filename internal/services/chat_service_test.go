package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newChatFixture() (*ChatService, *fakeChatStore, *models.User, *models.Room) {
	sender := &models.User{
		ID:       primitive.NewObjectID(),
		Nickname: "alice",
		Gender:   "female",
		Roles:    []string{models.RoleUser},
	}
	room := &models.Room{
		RoomID:  "AAAA1111",
		Name:    "general",
		Creator: sender.ID,
		Owner:   sender.ID,
	}
	chats := &fakeChatStore{}
	svc := NewChatService(chats, newFakeUserStore(sender), newFakeRoomStore(room))
	return svc, chats, sender, room
}

func TestSendMessagePersistsWithDenormalizedFields(t *testing.T) {
	sender := &models.User{
		ID:        primitive.NewObjectID(),
		Nickname:  "alice",
		Avatar:    "cat.png",
		NameColor: "#ff0000",
		Roles:     []string{models.RoleUser},
	}
	room := &models.Room{RoomID: "AAAA1111", Creator: sender.ID, Owner: sender.ID}
	svc := NewChatService(&fakeChatStore{}, newFakeUserStore(sender), newFakeRoomStore(room))

	msg, err := svc.SendMessage(context.Background(), sender.ID, room.RoomID, "hello", "")
	require.NoError(t, err)

	assert.Equal(t, "alice", msg.Nickname)
	assert.Equal(t, "cat.png", msg.Avatar)
	assert.Equal(t, "#ff0000", msg.NameColor)
	assert.Equal(t, "hello", msg.Message)
}

func TestSendMessageBumpsSenderCounter(t *testing.T) {
	sender := &models.User{ID: primitive.NewObjectID(), Nickname: "alice", Roles: []string{models.RoleUser}}
	room := &models.Room{RoomID: "AAAA1111", Creator: sender.ID, Owner: sender.ID}
	users := newFakeUserStore(sender)
	svc := NewChatService(&fakeChatStore{}, users, newFakeRoomStore(room))

	_, err := svc.SendMessage(context.Background(), sender.ID, room.RoomID, "hello", "")
	require.NoError(t, err)

	updated, _ := users.GetUserByID(context.Background(), sender.ID)
	assert.Equal(t, 1, updated.ChatMessageCount)
}

func TestSendMessageToBlockingRecipientRejected(t *testing.T) {
	sender := &models.User{ID: primitive.NewObjectID(), Nickname: "alice", Roles: []string{models.RoleUser}}
	recipient := &models.User{
		ID:           primitive.NewObjectID(),
		Nickname:     "bob",
		Roles:        []string{models.RoleUser},
		BlockedUsers: []primitive.ObjectID{sender.ID},
	}
	room := &models.Room{RoomID: "AAAA1111", Creator: sender.ID, Owner: sender.ID}
	chats := &fakeChatStore{}
	svc := NewChatService(chats, newFakeUserStore(sender, recipient), newFakeRoomStore(room))

	_, err := svc.SendMessageTo(context.Background(), sender.ID, recipient.ID, room.RoomID, "hey bob", "")
	assert.ErrorIs(t, err, ErrBlockedByRecipient)

	count, _ := chats.CountByRoom(context.Background(), room.RoomID)
	assert.Zero(t, count, "rejected message must not persist")
}

func TestSendMessageUnaddressedSkipsBlockCheck(t *testing.T) {
	sender := &models.User{ID: primitive.NewObjectID(), Nickname: "alice", Roles: []string{models.RoleUser}}
	blocker := &models.User{
		ID:           primitive.NewObjectID(),
		Nickname:     "bob",
		Roles:        []string{models.RoleUser},
		BlockedUsers: []primitive.ObjectID{sender.ID},
	}
	room := &models.Room{RoomID: "AAAA1111", Creator: sender.ID, Owner: sender.ID}
	chats := &fakeChatStore{}
	svc := NewChatService(chats, newFakeUserStore(sender, blocker), newFakeRoomStore(room))

	// A room member blocking the sender only bars addressed messages;
	// a plain room post still goes through.
	_, err := svc.SendMessage(context.Background(), sender.ID, room.RoomID, "hello room", "")
	require.NoError(t, err)

	count, _ := chats.CountByRoom(context.Background(), room.RoomID)
	assert.EqualValues(t, 1, count)
}

func TestSendMessageBannedSender(t *testing.T) {
	svc, chats, sender, room := newChatFixture()
	sender.IsBanned = true
	svc = NewChatService(chats, newFakeUserStore(sender), newFakeRoomStore(room))

	_, err := svc.SendMessage(context.Background(), sender.ID, room.RoomID, "hello", "")
	assert.ErrorIs(t, err, ErrBannedFromSending)
	assert.Equal(t, "You are banned from sending messages.", err.Error())

	count, _ := chats.CountByRoom(context.Background(), room.RoomID)
	assert.Zero(t, count, "no chat document should be created for a banned sender")
}

func TestSendMessageRoomNotFound(t *testing.T) {
	svc, _, sender, _ := newChatFixture()
	_, err := svc.SendMessage(context.Background(), sender.ID, "ZZZZ9999", "hello", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSendMessagePrivateRoomDeniesOutsider(t *testing.T) {
	owner := primitive.NewObjectID()
	outsider := &models.User{ID: primitive.NewObjectID(), Nickname: "eve", Roles: []string{models.RoleUser}}
	room := &models.Room{RoomID: "AAAA1111", Creator: owner, Owner: owner, IsPrivate: true}
	svc := NewChatService(&fakeChatStore{}, newFakeUserStore(outsider), newFakeRoomStore(room))

	_, err := svc.SendMessage(context.Background(), outsider.ID, room.RoomID, "hello", "")
	assert.ErrorIs(t, err, ErrPrivateRoomAccess)
}

func TestSendMessagePrivateRoomAllowsAccessedUser(t *testing.T) {
	owner := primitive.NewObjectID()
	member := &models.User{ID: primitive.NewObjectID(), Nickname: "bob", Roles: []string{models.RoleUser}}
	room := &models.Room{
		RoomID:        "AAAA1111",
		Creator:       owner,
		Owner:         owner,
		IsPrivate:     true,
		AccessedUsers: []primitive.ObjectID{member.ID},
	}
	svc := NewChatService(&fakeChatStore{}, newFakeUserStore(member), newFakeRoomStore(room))

	_, err := svc.SendMessage(context.Background(), member.ID, room.RoomID, "hello", "")
	assert.NoError(t, err)
}

func TestSendMessageReadOnlyUser(t *testing.T) {
	owner := primitive.NewObjectID()
	muted := &models.User{ID: primitive.NewObjectID(), Nickname: "bob", Roles: []string{models.RoleUser}}
	room := &models.Room{
		RoomID:        "AAAA1111",
		Creator:       owner,
		Owner:         owner,
		ReadOnlyUsers: []primitive.ObjectID{muted.ID},
	}
	svc := NewChatService(&fakeChatStore{}, newFakeUserStore(muted), newFakeRoomStore(room))

	_, err := svc.SendMessage(context.Background(), muted.ID, room.RoomID, "hello", "")
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestSendMessageEmpty(t *testing.T) {
	svc, _, sender, room := newChatFixture()
	_, err := svc.SendMessage(context.Background(), sender.ID, room.RoomID, "   ", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestRetentionCapsRoomAtLimit(t *testing.T) {
	svc, chats, sender, room := newChatFixture()

	for i := 0; i < MaxMessagesPerRoom; i++ {
		_, err := svc.SendMessage(context.Background(), sender.ID, room.RoomID, fmt.Sprintf("msg-%d", i), "")
		require.NoError(t, err)
	}
	count, _ := chats.CountByRoom(context.Background(), room.RoomID)
	require.EqualValues(t, MaxMessagesPerRoom, count)

	// Message 71 evicts exactly the oldest.
	_, err := svc.SendMessage(context.Background(), sender.ID, room.RoomID, "msg-overflow", "")
	require.NoError(t, err)

	count, _ = chats.CountByRoom(context.Background(), room.RoomID)
	assert.EqualValues(t, MaxMessagesPerRoom, count)

	msgs, _ := chats.GetMessagesByRoom(context.Background(), room.RoomID)
	texts := make(map[string]bool, len(msgs))
	for _, m := range msgs {
		texts[m.Message] = true
	}
	assert.False(t, texts["msg-0"], "oldest message should have been evicted")
	assert.True(t, texts["msg-1"], "second-oldest message should survive")
	assert.True(t, texts["msg-overflow"], "new message should be present")
}

func TestRetentionNeverExceedsCap(t *testing.T) {
	svc, chats, sender, room := newChatFixture()

	for i := 0; i < MaxMessagesPerRoom+25; i++ {
		_, err := svc.SendMessage(context.Background(), sender.ID, room.RoomID, fmt.Sprintf("msg-%d", i), "")
		require.NoError(t, err)

		count, _ := chats.CountByRoom(context.Background(), room.RoomID)
		assert.LessOrEqual(t, count, int64(MaxMessagesPerRoom))
	}
}

func TestGetHistoryPrivateRoom(t *testing.T) {
	owner := primitive.NewObjectID()
	outsider := &models.User{ID: primitive.NewObjectID(), Roles: []string{models.RoleUser}}
	room := &models.Room{RoomID: "AAAA1111", Creator: owner, Owner: owner, IsPrivate: true}
	svc := NewChatService(&fakeChatStore{}, newFakeUserStore(outsider), newFakeRoomStore(room))

	_, err := svc.GetHistory(context.Background(), outsider.ID, room.RoomID)
	assert.ErrorIs(t, err, ErrPrivateRoomAccess)
}
