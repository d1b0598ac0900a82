package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/ravin009/chatfun-sub000/internal/ws"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory store fakes backing the service tests.

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (s *fakeUserStore) GetUserByNickname(ctx context.Context, nickname string) (*models.User, error) {
	for _, u := range s.users {
		if u.Nickname == nickname {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (s *fakeUserStore) UpdateUserFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	if v, ok := fields["hashed_password"]; ok {
		u.HashedPassword = v.(string)
	}
	if v, ok := fields["avatar"]; ok {
		u.Avatar = v.(string)
	}
	if v, ok := fields["name_color"]; ok {
		u.NameColor = v.(string)
	}
	if v, ok := fields["message_color"]; ok {
		u.MessageColor = v.(string)
	}
	return nil
}

func (s *fakeUserStore) SetPresence(ctx context.Context, id primitive.ObjectID, isOnline bool, roomID string) error {
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.IsOnline = isOnline
	u.RoomID = roomID
	return nil
}

func (s *fakeUserStore) CountOnlineByRoomAndGender(ctx context.Context, roomID string) (int64, int64, error) {
	var male, female int64
	for _, u := range s.users {
		if u.RoomID == roomID && u.IsOnline {
			switch u.Gender {
			case "male":
				male++
			case "female":
				female++
			}
		}
	}
	return male, female, nil
}

func (s *fakeUserStore) FindOnlineByRoom(ctx context.Context, roomID string) ([]models.User, error) {
	var users []models.User
	for _, u := range s.users {
		if u.RoomID == roomID && u.IsOnline {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (s *fakeUserStore) IncrementCounters(ctx context.Context, id primitive.ObjectID, rating, chatMessages, privateMessages int) error {
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.Rating += rating
	u.ChatMessageCount += chatMessages
	u.PrivateMessageCount += privateMessages
	return nil
}

func (s *fakeUserStore) SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error {
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.IsBanned = banned
	return nil
}

func (s *fakeUserStore) BlockUser(ctx context.Context, userID, targetID primitive.ObjectID) error {
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.BlockedUsers = append(u.BlockedUsers, targetID)
	return nil
}

func (s *fakeUserStore) UnblockUser(ctx context.Context, userID, targetID primitive.ObjectID) error {
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	var kept []primitive.ObjectID
	for _, b := range u.BlockedUsers {
		if b != targetID {
			kept = append(kept, b)
		}
	}
	u.BlockedUsers = kept
	return nil
}

func (s *fakeUserStore) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user not found")
	}
	for _, f := range u.Friends {
		if f == friendID {
			return nil
		}
	}
	u.Friends = append(u.Friends, friendID)
	return nil
}

func (s *fakeUserStore) RemoveFriend(ctx context.Context, userID1, userID2 primitive.ObjectID) error {
	for _, pair := range [][2]primitive.ObjectID{{userID1, userID2}, {userID2, userID1}} {
		u, ok := s.users[pair[0]]
		if !ok {
			continue
		}
		var kept []primitive.ObjectID
		for _, f := range u.Friends {
			if f != pair[1] {
				kept = append(kept, f)
			}
		}
		u.Friends = kept
	}
	return nil
}

func (s *fakeUserStore) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var users []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (s *fakeUserStore) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *fakeUserStore) ClearStalePresence(ctx context.Context) (int64, error) {
	var cleared int64
	for _, u := range s.users {
		if u.IsOnline {
			u.IsOnline = false
			u.RoomID = ""
			cleared++
		}
	}
	return cleared, nil
}

type fakeRoomStore struct {
	rooms map[string]*models.Room

	// lookupErr, when set, is returned by every lookup to simulate a
	// store failure.
	lookupErr error
}

func newFakeRoomStore(rooms ...*models.Room) *fakeRoomStore {
	s := &fakeRoomStore{rooms: make(map[string]*models.Room)}
	for _, r := range rooms {
		s.rooms[r.RoomID] = r
	}
	return s
}

func (s *fakeRoomStore) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	if room.ID.IsZero() {
		room.ID = primitive.NewObjectID()
	}
	room.CreatedAt = time.Now()
	s.rooms[room.RoomID] = room
	return room, nil
}

func (s *fakeRoomStore) GetRoomByRoomID(ctx context.Context, roomID string) (*models.Room, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("failed to find room %s: %w", roomID, mongo.ErrNoDocuments)
	}
	copied := *r
	return &copied, nil
}

func (s *fakeRoomStore) GetRoomByName(ctx context.Context, name string) (*models.Room, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	for _, r := range s.rooms {
		if r.Name == name {
			copied := *r
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("failed to find room by name: %w", mongo.ErrNoDocuments)
}

func (s *fakeRoomStore) UpdateRoomFields(ctx context.Context, roomID string, fields bson.M) error {
	r, ok := s.rooms[roomID]
	if !ok {
		return fmt.Errorf("room not found")
	}
	if v, ok := fields["owner"]; ok {
		r.Owner = v.(primitive.ObjectID)
	}
	if v, ok := fields["is_private"]; ok {
		r.IsPrivate = v.(bool)
	}
	if v, ok := fields["background_color"]; ok {
		r.BackgroundColor = v.(string)
	}
	return nil
}

func (s *fakeRoomStore) listFor(roomID, field string) *[]primitive.ObjectID {
	r := s.rooms[roomID]
	switch field {
	case "read_only_users":
		return &r.ReadOnlyUsers
	case "invited_users":
		return &r.InvitedUsers
	case "accessed_users":
		return &r.AccessedUsers
	}
	return nil
}

func (s *fakeRoomStore) AddToUserList(ctx context.Context, roomID, field string, userID primitive.ObjectID) error {
	if _, ok := s.rooms[roomID]; !ok {
		return fmt.Errorf("room not found")
	}
	list := s.listFor(roomID, field)
	for _, id := range *list {
		if id == userID {
			return nil
		}
	}
	*list = append(*list, userID)
	return nil
}

func (s *fakeRoomStore) RemoveFromUserList(ctx context.Context, roomID, field string, userID primitive.ObjectID) error {
	if _, ok := s.rooms[roomID]; !ok {
		return fmt.Errorf("room not found")
	}
	list := s.listFor(roomID, field)
	var kept []primitive.ObjectID
	for _, id := range *list {
		if id != userID {
			kept = append(kept, id)
		}
	}
	*list = kept
	return nil
}

func (s *fakeRoomStore) DeleteRoom(ctx context.Context, roomID string) error {
	if _, ok := s.rooms[roomID]; !ok {
		return fmt.Errorf("room not found")
	}
	delete(s.rooms, roomID)
	return nil
}

func (s *fakeRoomStore) ListRooms(ctx context.Context, userID primitive.ObjectID) ([]models.Room, error) {
	var rooms []models.Room
	for _, r := range s.rooms {
		if !r.IsPrivate || r.Creator == userID || r.Owner == userID || r.HasAccess(userID) {
			rooms = append(rooms, *r)
		}
	}
	return rooms, nil
}

type fakeChatStore struct {
	messages []models.Chat
	seq      int
}

func (s *fakeChatStore) InsertMessage(ctx context.Context, msg *models.Chat) (*models.Chat, error) {
	s.seq++
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Unix(int64(s.seq), 0)
	s.messages = append(s.messages, *msg)
	return msg, nil
}

func (s *fakeChatStore) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	var count int64
	for _, m := range s.messages {
		if m.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (s *fakeChatStore) DeleteOldestByRoom(ctx context.Context, roomID string) error {
	oldest := -1
	for i, m := range s.messages {
		if m.RoomID != roomID {
			continue
		}
		if oldest == -1 || m.CreatedAt.Before(s.messages[oldest].CreatedAt) {
			oldest = i
		}
	}
	if oldest >= 0 {
		s.messages = append(s.messages[:oldest], s.messages[oldest+1:]...)
	}
	return nil
}

func (s *fakeChatStore) GetMessagesByRoom(ctx context.Context, roomID string) ([]models.Chat, error) {
	var msgs []models.Chat
	for _, m := range s.messages {
		if m.RoomID == roomID {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

func (s *fakeChatStore) DeleteByRoom(ctx context.Context, roomID string) error {
	var kept []models.Chat
	for _, m := range s.messages {
		if m.RoomID != roomID {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	return nil
}

type fakePrivateMessageStore struct {
	messages []models.PrivateMessage
	seq      int
}

func samePair(m models.PrivateMessage, a, b primitive.ObjectID) bool {
	return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
}

func (s *fakePrivateMessageStore) InsertMessage(ctx context.Context, msg *models.PrivateMessage) (*models.PrivateMessage, error) {
	s.seq++
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Unix(int64(s.seq), 0)
	s.messages = append(s.messages, *msg)
	return msg, nil
}

func (s *fakePrivateMessageStore) CountByPair(ctx context.Context, a, b primitive.ObjectID) (int64, error) {
	var count int64
	for _, m := range s.messages {
		if samePair(m, a, b) {
			count++
		}
	}
	return count, nil
}

func (s *fakePrivateMessageStore) DeleteOldestByPair(ctx context.Context, a, b primitive.ObjectID) error {
	oldest := -1
	for i, m := range s.messages {
		if !samePair(m, a, b) {
			continue
		}
		if oldest == -1 || m.CreatedAt.Before(s.messages[oldest].CreatedAt) {
			oldest = i
		}
	}
	if oldest >= 0 {
		s.messages = append(s.messages[:oldest], s.messages[oldest+1:]...)
	}
	return nil
}

func (s *fakePrivateMessageStore) GetConversation(ctx context.Context, a, b primitive.ObjectID) ([]models.PrivateMessage, error) {
	var msgs []models.PrivateMessage
	for _, m := range s.messages {
		if samePair(m, a, b) {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

func (s *fakePrivateMessageStore) MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	for i, m := range s.messages {
		if m.ID == id && m.RecipientID == recipientID {
			s.messages[i].IsRead = true
			return nil
		}
	}
	return fmt.Errorf("message not found")
}

func (s *fakePrivateMessageStore) GetMessagesForUser(ctx context.Context, userID primitive.ObjectID) ([]models.PrivateMessage, error) {
	var msgs []models.PrivateMessage
	for _, m := range s.messages {
		if m.SenderID == userID || m.RecipientID == userID {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

// fakeHub records everything published to the socket layer.
type fakeHub struct {
	mu        sync.Mutex
	allEvents []ws.Event
	roomWise  map[string][]ws.Event
	userWise  map[string][]ws.Event
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		roomWise: make(map[string][]ws.Event),
		userWise: make(map[string][]ws.Event),
	}
}

func (h *fakeHub) BroadcastAll(event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.allEvents = append(h.allEvents, event)
}

func (h *fakeHub) BroadcastRoom(roomID string, event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roomWise[roomID] = append(h.roomWise[roomID], event)
}

func (h *fakeHub) SendToUser(userID string, event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.userWise[userID] = append(h.userWise[userID], event)
}

func (h *fakeHub) roomEvents(roomID, name string) []ws.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var events []ws.Event
	for _, e := range h.roomWise[roomID] {
		if e.Event == name {
			events = append(events, e)
		}
	}
	return events
}
