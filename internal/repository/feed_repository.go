package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/storage"
	"github.com/lifequest/lifequest-backend/pkg/logger"
)

// ErrActivityNotFound is returned when an activity id resolves in neither
// the real feed nor the seeded one.
var ErrActivityNotFound = fmt.Errorf("activity not found")

// FeedRepository persists the shared activity feed as one blob, plus a
// separately keyed seeded feed standing in for a real social network.
type FeedRepository struct {
	store storage.Store
	locks keyLocker
}

func NewFeedRepository(store storage.Store) *FeedRepository {
	return &FeedRepository{store: store}
}

// GetActivities fetches the real feed, most recent first.
func (r *FeedRepository) GetActivities(ctx context.Context) ([]models.Activity, error) {
	return r.getList(ctx, storage.FeedKey)
}

// GetMockActivities fetches the seeded feed.
func (r *FeedRepository) GetMockActivities(ctx context.Context) ([]models.Activity, error) {
	return r.getList(ctx, storage.MockFeedKey)
}

// PrependActivity puts a new activity at the head of the real feed.
func (r *FeedRepository) PrependActivity(ctx context.Context, activity *models.Activity) error {
	mu := r.locks.forKey(storage.FeedKey)
	mu.Lock()
	defer mu.Unlock()

	activities, err := r.getList(ctx, storage.FeedKey)
	if err != nil {
		return err
	}
	activities = append([]models.Activity{*activity}, activities...)
	return r.setList(ctx, storage.FeedKey, activities)
}

// UpdateActivity applies fn to the activity with the given id, looking in
// the real feed first and the seeded feed second. Returns
// ErrActivityNotFound if the id resolves in neither.
func (r *FeedRepository) UpdateActivity(ctx context.Context, activityID string, fn func(*models.Activity) error) (*models.Activity, error) {
	for _, key := range []string{storage.FeedKey, storage.MockFeedKey} {
		activity, err := r.updateInList(ctx, key, activityID, fn)
		if err == ErrActivityNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		return activity, nil
	}
	return nil, ErrActivityNotFound
}

// SeedMockFeed writes the seeded feed once; an existing seed is kept.
func (r *FeedRepository) SeedMockFeed(ctx context.Context, activities []models.Activity) error {
	mu := r.locks.forKey(storage.MockFeedKey)
	mu.Lock()
	defer mu.Unlock()

	_, err := r.store.Get(ctx, storage.MockFeedKey)
	if err == nil {
		return nil
	}
	if err != storage.ErrNotFound {
		return fmt.Errorf("failed to check seeded feed: %v", err)
	}

	if err := r.setList(ctx, storage.MockFeedKey, activities); err != nil {
		return err
	}
	logger.Log.WithField("count", len(activities)).Info("Seeded stand-in activity feed")
	return nil
}

func (r *FeedRepository) updateInList(ctx context.Context, key, activityID string, fn func(*models.Activity) error) (*models.Activity, error) {
	mu := r.locks.forKey(key)
	mu.Lock()
	defer mu.Unlock()

	activities, err := r.getList(ctx, key)
	if err != nil {
		return nil, err
	}

	for i := range activities {
		if activities[i].ID != activityID {
			continue
		}
		if err := fn(&activities[i]); err != nil {
			return nil, err
		}
		if err := r.setList(ctx, key, activities); err != nil {
			return nil, err
		}
		updated := activities[i]
		return &updated, nil
	}
	return nil, ErrActivityNotFound
}

func (r *FeedRepository) getList(ctx context.Context, key string) ([]models.Activity, error) {
	raw, err := r.store.Get(ctx, key)
	if err == storage.ErrNotFound {
		return []models.Activity{}, nil
	}
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Error("Failed to fetch feed")
		return nil, fmt.Errorf("failed to fetch feed: %v", err)
	}

	var activities []models.Activity
	if err := json.Unmarshal(raw, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %v", err)
	}
	for i := range activities {
		if activities[i].Likes == nil {
			activities[i].Likes = []string{}
		}
		if activities[i].Comments == nil {
			activities[i].Comments = []models.Comment{}
		}
	}
	return activities, nil
}

func (r *FeedRepository) setList(ctx context.Context, key string, activities []models.Activity) error {
	raw, err := json.Marshal(activities)
	if err != nil {
		return fmt.Errorf("failed to encode feed: %v", err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		logger.Log.WithError(err).WithField("key", key).Error("Failed to persist feed")
		return fmt.Errorf("failed to persist feed: %v", err)
	}
	return nil
}
