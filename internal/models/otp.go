package models

import "time"

// Otp is a one-time password-reset code. The otps collection carries a
// TTL index on created_at so documents expire five minutes after issue.
type Otp struct {
	Email     string    `bson:"email" json:"email"`
	Otp       string    `bson:"otp" json:"otp"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
