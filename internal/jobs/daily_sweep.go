package jobs

import (
	"context"
	"fmt"

	"github.com/lifequest/lifequest-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// DailySweep forces the daily quest rotation for every user at midnight,
// so completion counters reset and a fresh draw exists even for users who
// have not opened the app yet.
type DailySweep struct {
	QuestService *services.QuestService
	UserService  *services.UserService
}

// NewDailySweep creates a new instance of DailySweep.
func NewDailySweep(questService *services.QuestService, userService *services.UserService) *DailySweep {
	return &DailySweep{
		QuestService: questService,
		UserService:  userService,
	}
}

// Run rotates the daily board of every registered user.
func (d *DailySweep) Run(ctx context.Context) error {
	userIDs, err := d.UserService.GetUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch users: %v", err)
	}

	swept := 0
	for _, userID := range userIDs {
		if _, err := d.QuestService.EnsureDailyState(ctx, userID); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Daily sweep failed for user")
			continue
		}
		swept++
	}

	logrus.WithField("users", swept).Info("Daily rotation sweep completed")
	return nil
}
