package services

import (
	"context"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
	"github.com/ravin009/chatfun-sub000/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates the business logic for user accounts.
type UserService struct {
	repo UserStore
	otps *OtpService
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore, otps *OtpService) *UserService {
	return &UserService{repo: repo, otps: otps}
}

// RegisterUser registers a new user after hashing their password.
func (s *UserService) RegisterUser(ctx context.Context, nickname, email, password, gender string) (*models.User, error) {
	logrus.Info("Registering new user")

	if nickname == "" || email == "" || password == "" {
		return nil, fmt.Errorf("missing required user fields")
	}
	if !emailRegex.MatchString(email) {
		logrus.WithField("email", email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("invalid email format")
	}
	if gender != "male" && gender != "female" {
		return nil, fmt.Errorf("gender must be male or female")
	}

	if existing, _ := s.repo.GetUserByEmail(ctx, email); existing != nil {
		return nil, fmt.Errorf("email already in use")
	}
	if existing, _ := s.repo.GetUserByNickname(ctx, nickname); existing != nil {
		return nil, fmt.Errorf("nickname already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		UUID:           uuid.NewString(),
		Nickname:       nickname,
		Email:          email,
		HashedPassword: string(hashed),
		Gender:         gender,
		Roles:          []string{models.RoleUser},
	}
	return s.repo.CreateUser(ctx, user)
}

// AuthenticateUser verifies credentials and returns the user record.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	return user, nil
}

// GetUser fetches a user by hex id.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ProfileUpdate is the set of fields a user may change on their profile.
type ProfileUpdate struct {
	Avatar       *string `json:"avatar,omitempty"`
	NameColor    *string `json:"nameColor,omitempty"`
	MessageColor *string `json:"messageColor,omitempty"`
}

// UpdateProfile applies a partial profile update. Changes do not rewrite
// display fields already denormalized onto stored messages.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) error {
	fields := bson.M{}
	if update.Avatar != nil {
		fields["avatar"] = *update.Avatar
	}
	if update.NameColor != nil {
		fields["name_color"] = *update.NameColor
	}
	if update.MessageColor != nil {
		fields["message_color"] = *update.MessageColor
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update")
	}
	return s.repo.UpdateUserFields(ctx, id, fields)
}

// BlockUser adds the target to the caller's blocked list.
func (s *UserService) BlockUser(ctx context.Context, userID, targetID primitive.ObjectID) error {
	if userID == targetID {
		return fmt.Errorf("cannot block yourself")
	}
	if _, err := s.repo.GetUserByID(ctx, targetID); err != nil {
		return ErrUserNotFound
	}
	return s.repo.BlockUser(ctx, userID, targetID)
}

// UnblockUser removes the target from the caller's blocked list.
func (s *UserService) UnblockUser(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return s.repo.UnblockUser(ctx, userID, targetID)
}

// AddFriend adds the target to both users' friend lists.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	if userID == friendID {
		return fmt.Errorf("cannot add yourself as a friend")
	}
	if _, err := s.repo.GetUserByID(ctx, friendID); err != nil {
		return ErrUserNotFound
	}
	if err := s.repo.AddFriend(ctx, userID, friendID); err != nil {
		return err
	}
	return s.repo.AddFriend(ctx, friendID, userID)
}

// RemoveFriend removes each user from the other's friend list.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	return s.repo.RemoveFriend(ctx, userID, friendID)
}

// GetFriends returns public profiles for the user's friends.
func (s *UserService) GetFriends(ctx context.Context, userID primitive.ObjectID) ([]models.PublicUser, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if len(user.Friends) == 0 {
		return []models.PublicUser{}, nil
	}

	friends, err := s.repo.GetUsersByIDs(ctx, user.Friends)
	if err != nil {
		return nil, err
	}

	public := make([]models.PublicUser, 0, len(friends))
	for i := range friends {
		public = append(public, friends[i].Public())
	}
	return public, nil
}

// SetBanned flips the ban flag on a user. Admin only, enforced by routing.
func (s *UserService) SetBanned(ctx context.Context, targetID primitive.ObjectID, banned bool) error {
	if _, err := s.repo.GetUserByID(ctx, targetID); err != nil {
		return ErrUserNotFound
	}
	return s.repo.SetBanned(ctx, targetID, banned)
}

// GetAllUsers returns every user record. Admin only, enforced by routing.
func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// RequestPasswordReset issues and emails a reset code for the account.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the account exists.
		logrus.WithField("email", email).Warn("Password reset requested for unknown email")
		return nil
	}
	return s.otps.IssueCode(ctx, user.Email)
}

// ResetPassword verifies the reset code and updates the password.
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("password is required")
	}

	if err := s.otps.VerifyCode(ctx, email, code); err != nil {
		return err
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return ErrUserNotFound
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	if err := s.repo.UpdateUserFields(ctx, user.ID, bson.M{"hashed_password": string(hashed)}); err != nil {
		return err
	}
	return s.otps.Invalidate(ctx, email)
}
