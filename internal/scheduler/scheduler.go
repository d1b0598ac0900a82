package cron

import (
	"context"

	"github.com/ravin009/chatfun-sub000/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartMaintenanceCronJobs runs the periodic cleanup tasks.
func StartMaintenanceCronJobs(otpService *services.OtpService) *cron.Cron {
	c := cron.New()

	// Expired OTP purge; the TTL index does the real work, this keeps
	// the collection tidy if the index is missing.
	c.AddFunc("@every 10m", func() {
		err := otpService.PurgeExpired(context.Background())
		if err != nil {
			logrus.WithError(err).Error("PurgeExpired failed")
		}
	})

	c.Start()
	return c
}
