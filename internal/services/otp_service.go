package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/ravin009/chatfun-sub000/pkg/email"
	"github.com/sirupsen/logrus"
)

// OtpService issues and verifies short-lived password-reset codes.
type OtpService struct {
	otps OtpStore
}

// NewOtpService creates a new OtpService.
func NewOtpService(otps OtpStore) *OtpService {
	return &OtpService{otps: otps}
}

// IssueCode generates a six-digit code, stores it and emails it.
func (s *OtpService) IssueCode(ctx context.Context, to string) error {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return fmt.Errorf("failed to generate code: %v", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	if err := s.otps.UpsertOtp(ctx, to, code); err != nil {
		return err
	}

	body := fmt.Sprintf("Your password reset code is %s. It expires in 5 minutes.", code)
	if err := email.SendEmail(to, "Password reset code", body); err != nil {
		logrus.WithField("email", to).Errorf("Failed to send reset code: %v", err)
		return fmt.Errorf("failed to send reset code")
	}
	return nil
}

// VerifyCode checks the code against the stored, non-expired one.
func (s *OtpService) VerifyCode(ctx context.Context, email, code string) error {
	return s.otps.VerifyOtp(ctx, email, code)
}

// Invalidate removes any stored code for the email.
func (s *OtpService) Invalidate(ctx context.Context, email string) error {
	return s.otps.DeleteByEmail(ctx, email)
}

// PurgeExpired removes stale codes. Wired to the cron scheduler.
func (s *OtpService) PurgeExpired(ctx context.Context) error {
	deleted, err := s.otps.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logrus.WithField("deleted", deleted).Info("Purged expired otps")
	}
	return nil
}
