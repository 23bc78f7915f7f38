package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	now      func() time.Time
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository) *NotificationService {
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// CreateNotification records a new notification for a user.
func (s *NotificationService) CreateNotification(ctx context.Context, userID, notifType, title, message, targetID string) error {
	notification := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		TargetID:  targetID,
		CreatedAt: s.now(),
	}
	return s.repo.PrependNotification(ctx, notification)
}

// GetUserNotifications returns all notifications for a user.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.GetNotifications(ctx, userID)
}

// MarkNotificationAsRead sets the "read" status of a notification to true.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, userID, notificationID string) error {
	return s.repo.MarkAsRead(ctx, userID, notificationID)
}

// DeleteNotification deletes a specific notification.
func (s *NotificationService) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	return s.repo.DeleteNotification(ctx, userID, notificationID)
}

// CheckStreaksAtRisk reminds every user whose last activity was yesterday
// that today's quests are still open. Run hourly by cron; a user gets at
// most one reminder per day.
func (s *NotificationService) CheckStreaksAtRisk(ctx context.Context) error {
	userIDs, err := s.userRepo.GetAllUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch users: %v", err)
	}

	now := s.now()
	today := models.DateKey(now)
	yesterday := models.DateKey(now.AddDate(0, 0, -1))

	for _, userID := range userIDs {
		user, err := s.userRepo.GetUserByID(ctx, userID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Skipping user in streak scan")
			continue
		}
		if user.LastActivityDate != yesterday || user.StreakCount == 0 {
			continue
		}

		if s.alreadyNotifiedToday(ctx, userID, "streak_at_risk", today) {
			continue
		}

		err = s.CreateNotification(ctx, userID, "streak_at_risk",
			"Your streak is at risk!",
			fmt.Sprintf("Complete a quest today to keep your %d-day streak alive.", user.StreakCount),
			"")
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Failed to send streak reminder")
		}
	}
	return nil
}

func (s *NotificationService) alreadyNotifiedToday(ctx context.Context, userID, notifType, today string) bool {
	notifications, err := s.repo.GetNotifications(ctx, userID)
	if err != nil {
		return false
	}
	for _, n := range notifications {
		if n.Type == notifType && models.DateKey(n.CreatedAt) == today {
			return true
		}
	}
	return false
}
