package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/storage"
	"github.com/lifequest/lifequest-backend/pkg/logger"
)

// QuestRepository persists one user's quest state as three blobs: the
// quest log, the daily rotation state and the hobby list.
type QuestRepository struct {
	store storage.Store
	locks keyLocker
}

func NewQuestRepository(store storage.Store) *QuestRepository {
	return &QuestRepository{store: store}
}

// GetQuestLog fetches the user's quest log, empty if none stored yet.
func (r *QuestRepository) GetQuestLog(ctx context.Context, userID string) (*models.QuestLog, error) {
	log := &models.QuestLog{}
	if err := r.getJSON(ctx, storage.QuestsKey(userID), log); err != nil {
		return nil, err
	}
	if log.Quests == nil {
		log.Quests = []models.Quest{}
	}
	if log.CustomQuests == nil {
		log.CustomQuests = []models.Quest{}
	}
	return log, nil
}

// UpdateQuestLog applies fn to the quest log under the key lock and writes
// the result back in one store write.
func (r *QuestRepository) UpdateQuestLog(ctx context.Context, userID string, fn func(*models.QuestLog) error) (*models.QuestLog, error) {
	key := storage.QuestsKey(userID)
	mu := r.locks.forKey(key)
	mu.Lock()
	defer mu.Unlock()

	log, err := r.GetQuestLog(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(log); err != nil {
		return nil, err
	}
	if err := r.setJSON(ctx, key, log); err != nil {
		return nil, err
	}
	return log, nil
}

// GetDailyState fetches the user's daily rotation state. A zero state with
// an empty date is returned when nothing is stored yet, so the caller's
// date check forces the first rotation.
func (r *QuestRepository) GetDailyState(ctx context.Context, userID string) (*models.DailyQuestState, error) {
	state := &models.DailyQuestState{}
	if err := r.getJSON(ctx, storage.DailyStateKey(userID), state); err != nil {
		return nil, err
	}
	if state.Available == nil {
		state.Available = make(map[models.Category][]string)
	}
	if state.CompletedCount == nil {
		state.CompletedCount = make(map[models.Category]int)
	}
	return state, nil
}

// UpdateDailyState applies fn to the daily state under the key lock.
func (r *QuestRepository) UpdateDailyState(ctx context.Context, userID string, fn func(*models.DailyQuestState) error) (*models.DailyQuestState, error) {
	key := storage.DailyStateKey(userID)
	mu := r.locks.forKey(key)
	mu.Lock()
	defer mu.Unlock()

	state, err := r.GetDailyState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := r.setJSON(ctx, key, state); err != nil {
		return nil, err
	}
	return state, nil
}

// GetHobbies fetches the user's hobby subcategories.
func (r *QuestRepository) GetHobbies(ctx context.Context, userID string) ([]models.Hobby, error) {
	var hobbies []models.Hobby
	if err := r.getJSON(ctx, storage.HobbiesKey(userID), &hobbies); err != nil {
		return nil, err
	}
	if hobbies == nil {
		hobbies = []models.Hobby{}
	}
	return hobbies, nil
}

// UpdateHobbies applies fn to the hobby list under the key lock.
func (r *QuestRepository) UpdateHobbies(ctx context.Context, userID string, fn func(*[]models.Hobby) error) ([]models.Hobby, error) {
	key := storage.HobbiesKey(userID)
	mu := r.locks.forKey(key)
	mu.Lock()
	defer mu.Unlock()

	hobbies, err := r.GetHobbies(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(&hobbies); err != nil {
		return nil, err
	}
	if err := r.setJSON(ctx, key, hobbies); err != nil {
		return nil, err
	}
	return hobbies, nil
}

// GetCoachProposals fetches the quest proposals accepted from the AI coach.
func (r *QuestRepository) GetCoachProposals(ctx context.Context, userID string) ([]models.CoachProposal, error) {
	var proposals []models.CoachProposal
	if err := r.getJSON(ctx, storage.CoachKey(userID), &proposals); err != nil {
		return nil, err
	}
	if proposals == nil {
		proposals = []models.CoachProposal{}
	}
	return proposals, nil
}

// AppendCoachProposal records one accepted coach proposal.
func (r *QuestRepository) AppendCoachProposal(ctx context.Context, userID string, proposal *models.CoachProposal) error {
	key := storage.CoachKey(userID)
	mu := r.locks.forKey(key)
	mu.Lock()
	defer mu.Unlock()

	proposals, err := r.GetCoachProposals(ctx, userID)
	if err != nil {
		return err
	}
	proposals = append(proposals, *proposal)
	return r.setJSON(ctx, key, proposals)
}

func (r *QuestRepository) getJSON(ctx context.Context, key string, out interface{}) error {
	raw, err := r.store.Get(ctx, key)
	if err == storage.ErrNotFound {
		return nil
	}
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Error("Failed to fetch quest blob")
		return fmt.Errorf("failed to fetch %s: %v", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s: %v", key, err)
	}
	return nil
}

func (r *QuestRepository) setJSON(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %v", key, err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		logger.Log.WithError(err).WithField("key", key).Error("Failed to persist quest blob")
		return fmt.Errorf("failed to persist %s: %v", key, err)
	}
	return nil
}
