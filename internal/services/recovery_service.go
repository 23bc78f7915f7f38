package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/repository"
	"github.com/lifequest/lifequest-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RecoveryService tracks addiction-recovery items. The append-only log
// plus the start date are the only source of truth; every streak number is
// recomputed from them on each read, so out-of-band edits to storage can
// never make the displayed counters drift from the history.
type RecoveryService struct {
	repo *repository.RecoveryRepository
	now  func() time.Time
}

// NewRecoveryService creates a new instance of RecoveryService.
func NewRecoveryService(repo *repository.RecoveryRepository) *RecoveryService {
	return &RecoveryService{
		repo: repo,
		now:  time.Now,
	}
}

// CreateItem starts tracking a new habit. A zero startDate means now.
func (s *RecoveryService) CreateItem(ctx context.Context, userID, name, description string, startDate time.Time) (*models.RecoveryItem, error) {
	if name == "" {
		return nil, fmt.Errorf("recovery item name is required")
	}
	if startDate.IsZero() {
		startDate = s.now()
	}

	item := &models.RecoveryItem{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		StartDate:   startDate,
		Logs:        []models.RecoveryLog{},
	}
	recomputeRecoveryStats(item, s.now())

	if _, err := s.repo.UpdateItems(ctx, userID, func(items *[]models.RecoveryItem) error {
		*items = append(*items, *item)
		return nil
	}); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"item_id": item.ID,
	}).Info("Recovery item created")
	return item, nil
}

// GetItems returns the user's recovery items with freshly recomputed
// streak numbers.
func (s *RecoveryService) GetItems(ctx context.Context, userID string) ([]models.RecoveryItem, error) {
	items, err := s.repo.GetItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range items {
		recomputeRecoveryStats(&items[i], now)
	}
	return items, nil
}

// LogRelapse appends a relapse entry. Unknown item ids are a silent no-op.
func (s *RecoveryService) LogRelapse(ctx context.Context, userID, itemID, note string) error {
	return s.appendLog(ctx, userID, itemID, models.RecoveryLogRelapse, note)
}

// LogSuccess appends a success entry. Unknown item ids are a silent no-op.
func (s *RecoveryService) LogSuccess(ctx context.Context, userID, itemID, note string) error {
	return s.appendLog(ctx, userID, itemID, models.RecoveryLogSuccess, note)
}

// DeleteItem removes a recovery item and its whole history unconditionally.
func (s *RecoveryService) DeleteItem(ctx context.Context, userID, itemID string) error {
	_, err := s.repo.UpdateItems(ctx, userID, func(items *[]models.RecoveryItem) error {
		kept := (*items)[:0]
		for _, item := range *items {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		*items = kept
		return nil
	})
	return err
}

func (s *RecoveryService) appendLog(ctx context.Context, userID, itemID string, logType models.RecoveryLogType, note string) error {
	now := s.now()
	entry := models.RecoveryLog{
		ID:        uuid.NewString(),
		Timestamp: now,
		Type:      logType,
		Note:      note,
	}

	appended := false
	_, err := s.repo.UpdateItems(ctx, userID, func(items *[]models.RecoveryItem) error {
		for i := range *items {
			item := &(*items)[i]
			if item.ID != itemID {
				continue
			}
			item.Logs = append(item.Logs, entry)
			recomputeRecoveryStats(item, now)
			appended = true
			return nil
		}
		// Unknown item: no-op.
		return nil
	})
	if err != nil {
		return err
	}

	if !appended {
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"item_id": itemID,
		}).Warn("Recovery log requested for unknown item")
		return nil
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"item_id": itemID,
		"type":    logType,
	}).Info("Recovery log appended")
	return nil
}

// recomputeRecoveryStats derives all four counters from the authoritative
// logs and start date. currentStreak counts days since the latest relapse
// (or the start), longestStreak is the widest relapse-to-relapse interval
// including the open one, totalDays counts lifetime days regardless of
// relapses.
func recomputeRecoveryStats(item *models.RecoveryItem, now time.Time) {
	var relapses []time.Time
	for _, log := range item.Logs {
		if log.Type == models.RecoveryLogRelapse {
			relapses = append(relapses, log.Timestamp)
		}
	}
	sort.Slice(relapses, func(i, j int) bool { return relapses[i].Before(relapses[j]) })

	item.RelapseCount = len(relapses)
	item.TotalDays = models.DaysBetween(item.StartDate, now)

	if len(relapses) == 0 {
		item.CurrentStreak = item.TotalDays
		item.LongestStreak = item.TotalDays
		return
	}

	item.CurrentStreak = models.DaysBetween(relapses[len(relapses)-1], now)

	longest := models.DaysBetween(item.StartDate, relapses[0])
	for i := 1; i < len(relapses); i++ {
		if interval := models.DaysBetween(relapses[i-1], relapses[i]); interval > longest {
			longest = interval
		}
	}
	if item.CurrentStreak > longest {
		longest = item.CurrentStreak
	}
	item.LongestStreak = longest
}
