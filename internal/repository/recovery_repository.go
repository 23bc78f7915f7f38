package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/storage"
	"github.com/lifequest/lifequest-backend/pkg/logger"
)

// RecoveryRepository persists one user's recovery items as a single blob.
// The logs inside each item are the authoritative data; derived counters
// are recomputed by the service on every read.
type RecoveryRepository struct {
	store storage.Store
	locks keyLocker
}

func NewRecoveryRepository(store storage.Store) *RecoveryRepository {
	return &RecoveryRepository{store: store}
}

// GetItems fetches the user's recovery items, empty if none stored.
func (r *RecoveryRepository) GetItems(ctx context.Context, userID string) ([]models.RecoveryItem, error) {
	raw, err := r.store.Get(ctx, storage.RecoveryKey(userID))
	if err == storage.ErrNotFound {
		return []models.RecoveryItem{}, nil
	}
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to fetch recovery items")
		return nil, fmt.Errorf("failed to fetch recovery items: %v", err)
	}

	var items []models.RecoveryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode recovery items: %v", err)
	}
	for i := range items {
		if items[i].Logs == nil {
			items[i].Logs = []models.RecoveryLog{}
		}
	}
	return items, nil
}

// UpdateItems applies fn to the item list under the key lock and persists
// the result in one write.
func (r *RecoveryRepository) UpdateItems(ctx context.Context, userID string, fn func(*[]models.RecoveryItem) error) ([]models.RecoveryItem, error) {
	key := storage.RecoveryKey(userID)
	mu := r.locks.forKey(key)
	mu.Lock()
	defer mu.Unlock()

	items, err := r.GetItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(&items); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recovery items: %v", err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to persist recovery items")
		return nil, fmt.Errorf("failed to persist recovery items: %v", err)
	}
	return items, nil
}
