package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/storage"
	"github.com/lifequest/lifequest-backend/pkg/logger"
)

// maxNotifications caps the per-user notification list; older entries are
// dropped from the tail.
const maxNotifications = 100

// NotificationRepository persists one user's notifications as one blob,
// most recent first.
type NotificationRepository struct {
	store storage.Store
	locks keyLocker
}

func NewNotificationRepository(store storage.Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

// GetNotifications fetches the user's notifications.
func (r *NotificationRepository) GetNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	raw, err := r.store.Get(ctx, storage.NotificationsKey(userID))
	if err == storage.ErrNotFound {
		return []models.Notification{}, nil
	}
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to fetch notifications")
		return nil, fmt.Errorf("failed to fetch notifications: %v", err)
	}

	var notifications []models.Notification
	if err := json.Unmarshal(raw, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %v", err)
	}
	return notifications, nil
}

// PrependNotification adds a notification at the head, trimming the tail.
func (r *NotificationRepository) PrependNotification(ctx context.Context, notification *models.Notification) error {
	_, err := r.update(ctx, notification.UserID, func(list *[]models.Notification) error {
		*list = append([]models.Notification{*notification}, *list...)
		if len(*list) > maxNotifications {
			*list = (*list)[:maxNotifications]
		}
		return nil
	})
	return err
}

// MarkAsRead flips the read flag of one notification. Unknown ids no-op.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	_, err := r.update(ctx, userID, func(list *[]models.Notification) error {
		for i := range *list {
			if (*list)[i].ID == notificationID {
				(*list)[i].Read = true
				break
			}
		}
		return nil
	})
	return err
}

// DeleteNotification removes one notification. Unknown ids no-op.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	_, err := r.update(ctx, userID, func(list *[]models.Notification) error {
		kept := (*list)[:0]
		for _, n := range *list {
			if n.ID != notificationID {
				kept = append(kept, n)
			}
		}
		*list = kept
		return nil
	})
	return err
}

func (r *NotificationRepository) update(ctx context.Context, userID string, fn func(*[]models.Notification) error) ([]models.Notification, error) {
	key := storage.NotificationsKey(userID)
	mu := r.locks.forKey(key)
	mu.Lock()
	defer mu.Unlock()

	notifications, err := r.GetNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(&notifications); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(notifications)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notifications: %v", err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		return nil, fmt.Errorf("failed to persist notifications: %v", err)
	}
	return notifications, nil
}
