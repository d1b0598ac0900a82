package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Warn("Failed to find user by ID")
		return nil, fmt.Errorf("failed to find user by id: %v", err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %v", err)
	}
	return &user, nil
}

// GetUserByNickname retrieves a user by nickname.
func (r *UserRepository) GetUserByNickname(ctx context.Context, nickname string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"nickname": nickname}).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by nickname: %v", err)
	}
	return &user, nil
}

// UpdateUserFields applies a partial $set update to the user document.
func (r *UserRepository) UpdateUserFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to update user")
		return fmt.Errorf("failed to update user: %v", err)
	}
	return nil
}

// SetPresence sets the online flag and current room in a single idempotent
// write. An empty roomID unsets the room field.
func (r *UserRepository) SetPresence(ctx context.Context, id primitive.ObjectID, isOnline bool, roomID string) error {
	update := bson.M{"$set": bson.M{"is_online": isOnline, "updated_at": time.Now()}}
	if roomID == "" {
		update["$unset"] = bson.M{"room_id": ""}
	} else {
		update["$set"].(bson.M)["room_id"] = roomID
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID":   id.Hex(),
			"isOnline": isOnline,
			"roomID":   roomID,
			"error":    err,
		}).Error("Failed to update presence")
		return fmt.Errorf("failed to update presence: %v", err)
	}
	return nil
}

// CountOnlineByRoomAndGender counts currently-online users whose persisted
// room matches, grouped into male and female totals.
func (r *UserRepository) CountOnlineByRoomAndGender(ctx context.Context, roomID string) (male int64, female int64, err error) {
	male, err = r.collection.CountDocuments(ctx, bson.M{"room_id": roomID, "is_online": true, "gender": "male"})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count male users: %v", err)
	}
	female, err = r.collection.CountDocuments(ctx, bson.M{"room_id": roomID, "is_online": true, "gender": "female"})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count female users: %v", err)
	}
	return male, female, nil
}

// FindOnlineByRoom returns the online users currently associated with the room.
func (r *UserRepository) FindOnlineByRoom(ctx context.Context, roomID string) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"room_id": roomID, "is_online": true})
	if err != nil {
		return nil, fmt.Errorf("failed to find users in room: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// IncrementCounters applies $inc updates to the user's counters. Zero
// values are skipped.
func (r *UserRepository) IncrementCounters(ctx context.Context, id primitive.ObjectID, rating, chatMessages, privateMessages int) error {
	inc := bson.M{}
	if rating != 0 {
		inc["rating"] = rating
	}
	if chatMessages != 0 {
		inc["chat_message_count"] = chatMessages
	}
	if privateMessages != 0 {
		inc["private_message_count"] = privateMessages
	}
	if len(inc) == 0 {
		return nil
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": inc})
	if err != nil {
		return fmt.Errorf("failed to increment counters: %v", err)
	}
	return nil
}

// SetBanned flips the banned flag on a user.
func (r *UserRepository) SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_banned": banned, "updated_at": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to update ban flag: %v", err)
	}
	logrus.WithFields(logrus.Fields{"userID": id.Hex(), "banned": banned}).Info("Ban flag updated")
	return nil
}

// BlockUser adds the target to the user's blocked list.
func (r *UserRepository) BlockUser(ctx context.Context, userID, targetID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"blocked_users": targetID}})
	if err != nil {
		return fmt.Errorf("failed to block user: %v", err)
	}
	return nil
}

// UnblockUser removes the target from the user's blocked list.
func (r *UserRepository) UnblockUser(ctx context.Context, userID, targetID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"blocked_users": targetID}})
	if err != nil {
		return fmt.Errorf("failed to unblock user: %v", err)
	}
	return nil
}

// AddFriend adds the friend to the user's friend list, avoiding duplicates.
func (r *UserRepository) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"friends": friendID}})
	if err != nil {
		return fmt.Errorf("failed to add friend: %v", err)
	}
	return nil
}

// RemoveFriend removes each user from the other's friend list.
func (r *UserRepository) RemoveFriend(ctx context.Context, userID1, userID2 primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID1},
		bson.M{"$pull": bson.M{"friends": userID2}})
	if err != nil {
		return fmt.Errorf("failed to remove friend from user %s: %v", userID1.Hex(), err)
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": userID2},
		bson.M{"$pull": bson.M{"friends": userID1}})
	if err != nil {
		return fmt.Errorf("failed to remove friend from user %s: %v", userID2.Hex(), err)
	}
	return nil
}

// GetUsersByIDs fetches user details for a list of ObjectIDs.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users by IDs: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// GetAllUsers returns every user record.
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %v", err)
		}
		users = append(users, &user)
	}
	return users, nil
}

// ClearStalePresence marks every user offline and roomless. Used at
// startup: any persisted online flag from a previous process is stale
// because presence lives with the process's connections.
func (r *UserRepository) ClearStalePresence(ctx context.Context) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"is_online": true},
		bson.M{"$set": bson.M{"is_online": false}, "$unset": bson.M{"room_id": ""}})
	if err != nil {
		return 0, fmt.Errorf("failed to clear stale presence: %v", err)
	}
	return result.ModifiedCount, nil
}
