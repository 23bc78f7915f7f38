package cron

import (
	"context"

	"github.com/lifequest/lifequest-backend/internal/jobs"
	"github.com/lifequest/lifequest-backend/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCronJobs wires the background jobs: the midnight rotation sweep and
// the hourly streak-at-risk reminder scan.
func StartCronJobs(sweep *jobs.DailySweep, notificationService *services.NotificationService) {
	c := cron.New()

	// Fresh daily quest rotation for everyone
	c.AddFunc("0 0 * * *", func() {
		if err := sweep.Run(context.Background()); err != nil {
			logrus.WithError(err).Error("Daily rotation sweep failed")
		}
	})

	// Streak reminders
	c.AddFunc("@hourly", func() {
		if err := notificationService.CheckStreaksAtRisk(context.Background()); err != nil {
			logrus.WithError(err).Error("CheckStreaksAtRisk failed")
		}
	})

	c.Start()
}
