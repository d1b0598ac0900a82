package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ravin009/chatfun-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OtpRepository handles storage of password-reset codes. Expiry is
// enforced twice: a TTL index on created_at, plus an explicit age check
// on lookup because Mongo's TTL sweep only runs periodically.
type OtpRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
}

// NewOtpRepository creates a new instance of OtpRepository.
func NewOtpRepository(db *mongo.Database) *OtpRepository {
	return &OtpRepository{
		collection: db.Collection("otps"),
		ttl:        5 * time.Minute,
	}
}

// UpsertOtp stores a fresh code for the email, replacing any previous one.
func (r *OtpRepository) UpsertOtp(ctx context.Context, email, code string) error {
	otp := models.Otp{Email: email, Otp: code, CreatedAt: time.Now()}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"email": email}, otp, opts)
	if err != nil {
		return fmt.Errorf("failed to store otp: %v", err)
	}
	return nil
}

// VerifyOtp checks that a non-expired code exists for the email.
func (r *OtpRepository) VerifyOtp(ctx context.Context, email, code string) error {
	var otp models.Otp
	err := r.collection.FindOne(ctx, bson.M{"email": email, "otp": code}).Decode(&otp)
	if err != nil {
		return fmt.Errorf("invalid or expired code")
	}
	if time.Since(otp.CreatedAt) > r.ttl {
		return fmt.Errorf("invalid or expired code")
	}
	return nil
}

// DeleteByEmail removes any code stored for the email.
func (r *OtpRepository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"email": email})
	if err != nil {
		return fmt.Errorf("failed to delete otp: %v", err)
	}
	return nil
}

// DeleteExpired purges codes older than the TTL. Run from the cron as a
// backstop for the TTL index.
func (r *OtpRepository) DeleteExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-r.ttl)
	result, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otps: %v", err)
	}
	return result.DeletedCount, nil
}
