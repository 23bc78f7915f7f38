package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/lifequest/lifequest-backend/internal/catalog"
	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/repository"
	"github.com/lifequest/lifequest-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// QuestService owns the quest lifecycle: activation from the catalog,
// custom quests, completion and XP awards, milestones, cancellation, the
// daily rotation and hobby subcategories.
type QuestService struct {
	repo                *repository.QuestRepository
	userService         *UserService
	NotificationService *NotificationService

	now func() time.Time
	rng *rand.Rand
}

// NewQuestService creates a new instance of QuestService.
func NewQuestService(repo *repository.QuestRepository, userService *UserService, notificationService *NotificationService) *QuestService {
	return &QuestService{
		repo:                repo,
		userService:         userService,
		NotificationService: notificationService,
		now:                 time.Now,
		rng:                 rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetQuests returns the user's quest log.
func (s *QuestService) GetQuests(ctx context.Context, userID string) (*models.QuestLog, error) {
	return s.repo.GetQuestLog(ctx, userID)
}

// EnsureDailyState returns today's daily quest state, drawing a fresh
// rotation and zeroing the completion counters on the first touch of a new
// calendar day.
func (s *QuestService) EnsureDailyState(ctx context.Context, userID string) (*models.DailyQuestState, error) {
	today := models.DateKey(s.now())

	return s.repo.UpdateDailyState(ctx, userID, func(state *models.DailyQuestState) error {
		if state.Date == today {
			return nil
		}

		state.Date = today
		state.Available = make(map[models.Category][]string, len(models.CatalogCategories))
		state.CompletedCount = make(map[models.Category]int, len(models.CatalogCategories))
		for _, category := range models.CatalogCategories {
			state.Available[category] = catalog.DrawDailyTitles(s.rng, category, models.DailyQuestLimit)
			state.CompletedCount[category] = 0
		}

		logger.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"date":    today,
		}).Info("Daily quest rotation drawn")
		return nil
	})
}

// ActivateQuest starts a catalog quest for the user. Daily quests must
// still be under the per-category limit and be part of today's rotation;
// both checks happen before any state changes.
func (s *QuestService) ActivateQuest(ctx context.Context, userID string, questType models.QuestType, category models.Category, title string) (*models.Quest, error) {
	if !models.AllowedCategories[category] {
		return nil, fmt.Errorf("invalid category: %s", category)
	}

	template, ok := catalog.FindTemplate(questType, category, title)
	if !ok {
		return nil, fmt.Errorf("quest template not found: %s", title)
	}

	if questType == models.QuestTypeDaily {
		state, err := s.EnsureDailyState(ctx, userID)
		if err != nil {
			return nil, err
		}
		if state.CompletedCount[category] >= models.DailyQuestLimit {
			return nil, ErrDailyLimitReached
		}
		if !state.IsAvailable(category, title) {
			return nil, ErrQuestNotAvailable
		}
	}

	quest := s.questFromTemplate(template)
	if _, err := s.repo.UpdateQuestLog(ctx, userID, func(log *models.QuestLog) error {
		log.Quests = append(log.Quests, *quest)
		return nil
	}); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"quest_id": quest.ID,
		"type":     quest.Type,
	}).Info("Quest activated")
	return quest, nil
}

// CustomQuestInput carries everything needed to author a quest by hand.
// The AI coach produces the same shape.
type CustomQuestInput struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Category    models.Category            `json:"category"`
	HobbyID     string                     `json:"hobby_id,omitempty"`
	XPValue     int                        `json:"xp_value"`
	MicroGoals  []models.MicroGoalTemplate `json:"micro_goals,omitempty"`
}

// AddCustomQuest creates a user-authored quest.
func (s *QuestService) AddCustomQuest(ctx context.Context, userID string, input CustomQuestInput) (*models.Quest, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("quest title is required")
	}
	if !models.AllowedCategories[input.Category] {
		return nil, fmt.Errorf("invalid category: %s", input.Category)
	}
	if input.XPValue <= 0 {
		return nil, fmt.Errorf("xp value must be positive")
	}
	if input.HobbyID != "" {
		if input.Category != models.CategoryHobbies {
			return nil, fmt.Errorf("hobby quests must use the hobbies category")
		}
		hobbies, err := s.repo.GetHobbies(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !hobbyExists(hobbies, input.HobbyID) {
			return nil, fmt.Errorf("hobby not found")
		}
	}

	quest := &models.Quest{
		ID:          uuid.NewString(),
		Type:        models.QuestTypeCustom,
		Category:    input.Category,
		HobbyID:     input.HobbyID,
		Title:       input.Title,
		Description: input.Description,
		XPValue:     input.XPValue,
		Status:      models.QuestStatusActive,
		StartDate:   s.now(),
		MicroGoals:  microGoalsFromTemplates(input.MicroGoals),
	}

	if _, err := s.repo.UpdateQuestLog(ctx, userID, func(log *models.QuestLog) error {
		log.CustomQuests = append(log.CustomQuests, *quest)
		return nil
	}); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"quest_id": quest.ID,
	}).Info("Custom quest created")
	return quest, nil
}

// AcceptCoachProposal records a quest proposal synthesized by the AI coach
// and creates the corresponding custom quest.
func (s *QuestService) AcceptCoachProposal(ctx context.Context, userID string, input CustomQuestInput, rationale string) (*models.Quest, error) {
	quest, err := s.AddCustomQuest(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	proposal := &models.CoachProposal{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		XPValue:     input.XPValue,
		MicroGoals:  input.MicroGoals,
		Rationale:   rationale,
		QuestID:     quest.ID,
		CreatedAt:   s.now(),
	}
	if err := s.repo.AppendCoachProposal(ctx, userID, proposal); err != nil {
		// The quest exists either way; the audit trail is best effort.
		logger.Log.WithError(err).WithField("user_id", userID).Warn("Failed to record coach proposal")
	}
	return quest, nil
}

// CompleteQuest marks a quest completed, awards its XP, and for daily
// quests bumps today's per-category completion counter. An unknown or
// already completed quest id is a silent no-op returning (nil, nil).
func (s *QuestService) CompleteQuest(ctx context.Context, userID, questID string, reflection *models.QuestReflection) (*models.Quest, error) {
	now := s.now()
	var completed *models.Quest

	if _, err := s.repo.UpdateQuestLog(ctx, userID, func(log *models.QuestLog) error {
		quest := findActiveQuest(log, questID)
		if quest == nil {
			return nil
		}

		quest.Status = models.QuestStatusCompleted
		quest.CompletedDate = &now
		if reflection != nil {
			reflection.CreatedAt = now
			quest.Reflection = reflection
		}

		copied := *quest
		completed = &copied
		return nil
	}); err != nil {
		return nil, err
	}

	if completed == nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id":  userID,
			"quest_id": questID,
		}).Warn("Complete requested for unknown or inactive quest")
		return nil, nil
	}

	if _, err := s.userService.AddXP(ctx, userID, completed.Category, completed.XPValue); err != nil {
		return nil, fmt.Errorf("failed to award quest XP: %v", err)
	}

	if completed.Type == models.QuestTypeDaily {
		if err := s.bumpDailyCount(ctx, userID, completed.Category); err != nil {
			return nil, err
		}
	}

	if s.NotificationService != nil {
		err := s.NotificationService.CreateNotification(ctx, userID, "quest_completed",
			"Quest Completed",
			fmt.Sprintf("You completed %q and earned %d XP!", completed.Title, completed.XPValue),
			completed.ID)
		if err != nil {
			logrus.WithError(err).Warn("Failed to send quest completed notification")
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"quest_id": questID,
		"xp":       completed.XPValue,
	}).Info("Quest completed")
	return completed, nil
}

// CompleteMilestone flips one micro goal to completed and awards its XP,
// independent of the parent quest's eventual completion award. Unknown
// quest or goal ids, or an already completed goal, are silent no-ops.
func (s *QuestService) CompleteMilestone(ctx context.Context, userID, questID, milestoneID string) (*models.MicroGoal, error) {
	var (
		completed *models.MicroGoal
		category  models.Category
	)

	if _, err := s.repo.UpdateQuestLog(ctx, userID, func(log *models.QuestLog) error {
		quest := findQuest(log, questID)
		if quest == nil {
			return nil
		}
		for i := range quest.MicroGoals {
			goal := &quest.MicroGoals[i]
			if goal.ID != milestoneID || goal.Completed {
				continue
			}
			goal.Completed = true
			copied := *goal
			completed = &copied
			category = quest.Category
			return nil
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if completed == nil {
		return nil, nil
	}

	if _, err := s.userService.AddXP(ctx, userID, category, completed.XPValue); err != nil {
		return nil, fmt.Errorf("failed to award milestone XP: %v", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":      userID,
		"quest_id":     questID,
		"milestone_id": milestoneID,
		"xp":           completed.XPValue,
	}).Info("Milestone completed")
	return completed, nil
}

// CancelQuest removes the quest from both lists unconditionally. Any
// confirmation dialog is the caller's concern.
func (s *QuestService) CancelQuest(ctx context.Context, userID, questID string) error {
	_, err := s.repo.UpdateQuestLog(ctx, userID, func(log *models.QuestLog) error {
		log.Quests = removeQuest(log.Quests, questID)
		log.CustomQuests = removeQuest(log.CustomQuests, questID)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"quest_id": questID,
	}).Info("Quest cancelled")
	return nil
}

// GetHobbies returns the user's hobby subcategories.
func (s *QuestService) GetHobbies(ctx context.Context, userID string) ([]models.Hobby, error) {
	return s.repo.GetHobbies(ctx, userID)
}

// AddHobby creates a new hobby subcategory.
func (s *QuestService) AddHobby(ctx context.Context, userID, name, description string) (*models.Hobby, error) {
	if name == "" {
		return nil, fmt.Errorf("hobby name is required")
	}

	hobby := &models.Hobby{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   s.now(),
	}

	if _, err := s.repo.UpdateHobbies(ctx, userID, func(hobbies *[]models.Hobby) error {
		for _, existing := range *hobbies {
			if existing.Name == name {
				return fmt.Errorf("hobby already exists")
			}
		}
		*hobbies = append(*hobbies, *hobby)
		return nil
	}); err != nil {
		return nil, err
	}
	return hobby, nil
}

// RemoveHobby deletes a hobby and cascades deletion to every quest tagged
// with it.
func (s *QuestService) RemoveHobby(ctx context.Context, userID, hobbyID string) error {
	if _, err := s.repo.UpdateHobbies(ctx, userID, func(hobbies *[]models.Hobby) error {
		kept := (*hobbies)[:0]
		for _, hobby := range *hobbies {
			if hobby.ID != hobbyID {
				kept = append(kept, hobby)
			}
		}
		*hobbies = kept
		return nil
	}); err != nil {
		return err
	}

	_, err := s.repo.UpdateQuestLog(ctx, userID, func(log *models.QuestLog) error {
		log.Quests = removeQuestsByHobby(log.Quests, hobbyID)
		log.CustomQuests = removeQuestsByHobby(log.CustomQuests, hobbyID)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"hobby_id": hobbyID,
	}).Info("Hobby removed with its quests")
	return nil
}

func (s *QuestService) bumpDailyCount(ctx context.Context, userID string, category models.Category) error {
	if _, err := s.EnsureDailyState(ctx, userID); err != nil {
		return err
	}
	_, err := s.repo.UpdateDailyState(ctx, userID, func(state *models.DailyQuestState) error {
		state.CompletedCount[category]++
		return nil
	})
	return err
}

func (s *QuestService) questFromTemplate(template models.QuestTemplate) *models.Quest {
	return &models.Quest{
		ID:          uuid.NewString(),
		Type:        template.Type,
		Category:    template.Category,
		Title:       template.Title,
		Description: template.Description,
		XPValue:     template.XPValue,
		Status:      models.QuestStatusActive,
		StartDate:   s.now(),
		MicroGoals:  microGoalsFromTemplates(template.MicroGoals),
	}
}

func microGoalsFromTemplates(templates []models.MicroGoalTemplate) []models.MicroGoal {
	if len(templates) == 0 {
		return nil
	}
	goals := make([]models.MicroGoal, 0, len(templates))
	for _, t := range templates {
		goals = append(goals, models.MicroGoal{
			ID:      uuid.NewString(),
			Title:   t.Title,
			XPValue: t.XPValue,
		})
	}
	return goals
}

func findQuest(log *models.QuestLog, questID string) *models.Quest {
	for i := range log.Quests {
		if log.Quests[i].ID == questID {
			return &log.Quests[i]
		}
	}
	for i := range log.CustomQuests {
		if log.CustomQuests[i].ID == questID {
			return &log.CustomQuests[i]
		}
	}
	return nil
}

func findActiveQuest(log *models.QuestLog, questID string) *models.Quest {
	quest := findQuest(log, questID)
	if quest == nil || quest.Status != models.QuestStatusActive {
		return nil
	}
	return quest
}

func removeQuest(quests []models.Quest, questID string) []models.Quest {
	kept := quests[:0]
	for _, quest := range quests {
		if quest.ID != questID {
			kept = append(kept, quest)
		}
	}
	return kept
}

func removeQuestsByHobby(quests []models.Quest, hobbyID string) []models.Quest {
	kept := quests[:0]
	for _, quest := range quests {
		if quest.HobbyID != hobbyID {
			kept = append(kept, quest)
		}
	}
	return kept
}

func hobbyExists(hobbies []models.Hobby, hobbyID string) bool {
	for _, hobby := range hobbies {
		if hobby.ID == hobbyID {
			return true
		}
	}
	return false
}
