package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/lifequest/lifequest-backend/internal/catalog"
	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyRotationDraw(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	day1 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	env.setNow(day1)
	env.quests.rng = rand.New(rand.NewSource(1))

	state, err := env.quests.EnsureDailyState(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, models.DateKey(day1), state.Date)
	for _, category := range models.CatalogCategories {
		assert.Len(t, state.Available[category], models.DailyQuestLimit, "category %s", category)
		assert.Equal(t, 0, state.CompletedCount[category])
	}

	// A second touch on the same day keeps the draw stable.
	again, err := env.quests.EnsureDailyState(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, state.Available, again.Available)
}

func TestDailyRotationResetsOnNewDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	day1 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	env.setNow(day1)
	env.quests.rng = rand.New(rand.NewSource(7))

	state, err := env.quests.EnsureDailyState(ctx, user.ID)
	require.NoError(t, err)

	// Complete one daily quest to move a counter off zero.
	quest, err := env.quests.ActivateQuest(ctx, user.ID, models.QuestTypeDaily, models.CategoryHealth, state.Available[models.CategoryHealth][0])
	require.NoError(t, err)
	_, err = env.quests.CompleteQuest(ctx, user.ID, quest.ID, nil)
	require.NoError(t, err)

	mid, err := env.quests.EnsureDailyState(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, mid.CompletedCount[models.CategoryHealth])

	// First touch of the next day: fresh draw, all counters zeroed.
	env.setNow(day1.AddDate(0, 0, 1))
	next, err := env.quests.EnsureDailyState(ctx, user.ID)
	require.NoError(t, err)

	assert.NotEqual(t, mid.Date, next.Date)
	for _, category := range models.CatalogCategories {
		assert.Len(t, next.Available[category], models.DailyQuestLimit)
		assert.Equal(t, 0, next.CompletedCount[category], "category %s", category)
	}
}

func TestActivateDailyQuestNotInRotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")
	env.setNow(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	env.quests.rng = rand.New(rand.NewSource(3))

	state, err := env.quests.EnsureDailyState(ctx, user.ID)
	require.NoError(t, err)

	// Find a catalog title that did not make today's draw.
	var offRotation string
	for _, template := range catalog.DailyPool(models.CategoryHealth) {
		if !state.IsAvailable(models.CategoryHealth, template.Title) {
			offRotation = template.Title
			break
		}
	}
	require.NotEmpty(t, offRotation, "pool is larger than the draw, one title must be left out")

	_, err = env.quests.ActivateQuest(ctx, user.ID, models.QuestTypeDaily, models.CategoryHealth, offRotation)
	assert.ErrorIs(t, err, ErrQuestNotAvailable)

	log, err := env.quests.GetQuests(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, log.Quests, "failed activation must not change the quest log")
}

func TestActivateDailyQuestLimitReached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")
	env.setNow(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	state, err := env.quests.EnsureDailyState(ctx, user.ID)
	require.NoError(t, err)

	_, err = env.questRepo.UpdateDailyState(ctx, user.ID, func(state *models.DailyQuestState) error {
		state.CompletedCount[models.CategoryHealth] = models.DailyQuestLimit
		return nil
	})
	require.NoError(t, err)

	_, err = env.quests.ActivateQuest(ctx, user.ID, models.QuestTypeDaily, models.CategoryHealth, state.Available[models.CategoryHealth][0])
	assert.ErrorIs(t, err, ErrDailyLimitReached)

	log, err := env.quests.GetQuests(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, log.Quests)
}

func TestCompleteQuestAwardsXPOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")
	env.setNow(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	state, err := env.quests.EnsureDailyState(ctx, user.ID)
	require.NoError(t, err)

	title := state.Available[models.CategoryHealth][0]
	quest, err := env.quests.ActivateQuest(ctx, user.ID, models.QuestTypeDaily, models.CategoryHealth, title)
	require.NoError(t, err)
	assert.Equal(t, models.QuestStatusActive, quest.Status)

	completed, err := env.quests.CompleteQuest(ctx, user.ID, quest.ID, &models.QuestReflection{Text: "felt great"})
	require.NoError(t, err)
	require.NotNil(t, completed)
	assert.Equal(t, models.QuestStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedDate)
	require.NotNil(t, completed.Reflection)
	assert.Equal(t, "felt great", completed.Reflection.Text)

	after, err := env.users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, quest.XPValue, after.TotalXP)

	dailyState, err := env.quests.EnsureDailyState(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, dailyState.CompletedCount[models.CategoryHealth])

	// A second completion of the same id is a no-op: no double XP award.
	second, err := env.quests.CompleteQuest(ctx, user.ID, quest.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, second)

	after, err = env.users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, quest.XPValue, after.TotalXP)

	dailyState, err = env.quests.EnsureDailyState(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, dailyState.CompletedCount[models.CategoryHealth])
}

func TestCompleteUnknownQuestIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	completed, err := env.quests.CompleteQuest(ctx, user.ID, "no-such-quest", nil)
	require.NoError(t, err)
	assert.Nil(t, completed)

	after, err := env.users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.TotalXP)
}

func TestCompleteMilestone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	quest, err := env.quests.AddCustomQuest(ctx, user.ID, CustomQuestInput{
		Title:    "Learn the guitar basics",
		Category: models.CategoryMental,
		XPValue:  200,
		MicroGoals: []models.MicroGoalTemplate{
			{Title: "Learn three chords", XPValue: 30},
			{Title: "Play one song", XPValue: 50},
		},
	})
	require.NoError(t, err)
	require.Len(t, quest.MicroGoals, 2)

	goal, err := env.quests.CompleteMilestone(ctx, user.ID, quest.ID, quest.MicroGoals[0].ID)
	require.NoError(t, err)
	require.NotNil(t, goal)
	assert.True(t, goal.Completed)

	after, err := env.users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, after.TotalXP, "milestone XP is awarded independently of the quest")

	// Completing the same milestone again is a no-op.
	goal, err = env.quests.CompleteMilestone(ctx, user.ID, quest.ID, quest.MicroGoals[0].ID)
	require.NoError(t, err)
	assert.Nil(t, goal)

	after, err = env.users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, after.TotalXP)

	// Unknown quest or milestone ids no-op too.
	goal, err = env.quests.CompleteMilestone(ctx, user.ID, quest.ID, "missing")
	require.NoError(t, err)
	assert.Nil(t, goal)

	// The parent quest still pays out in full on top of the milestone.
	completed, err := env.quests.CompleteQuest(ctx, user.ID, quest.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, completed)

	after, err = env.users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 230, after.TotalXP)
}

func TestCancelQuest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	quest, err := env.quests.AddCustomQuest(ctx, user.ID, CustomQuestInput{
		Title:    "Declutter the desk",
		Category: models.CategoryDiscipline,
		XPValue:  40,
	})
	require.NoError(t, err)

	require.NoError(t, env.quests.CancelQuest(ctx, user.ID, quest.ID))

	log, err := env.quests.GetQuests(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, log.CustomQuests)

	// Cancelled quests award nothing even if completion is retried.
	completed, err := env.quests.CompleteQuest(ctx, user.ID, quest.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, completed)
}

func TestCustomQuestValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	_, err := env.quests.AddCustomQuest(ctx, user.ID, CustomQuestInput{Category: models.CategoryHealth, XPValue: 10})
	assert.Error(t, err, "missing title")

	_, err = env.quests.AddCustomQuest(ctx, user.ID, CustomQuestInput{Title: "x", Category: "bogus", XPValue: 10})
	assert.Error(t, err, "bad category")

	_, err = env.quests.AddCustomQuest(ctx, user.ID, CustomQuestInput{Title: "x", Category: models.CategoryHealth, XPValue: 0})
	assert.Error(t, err, "xp must be positive")

	_, err = env.quests.AddCustomQuest(ctx, user.ID, CustomQuestInput{Title: "x", Category: models.CategoryHealth, XPValue: 10, HobbyID: "h1"})
	assert.Error(t, err, "hobby quests belong to the hobbies category")

	_, err = env.quests.AddCustomQuest(ctx, user.ID, CustomQuestInput{Title: "x", Category: models.CategoryHobbies, XPValue: 10, HobbyID: "missing"})
	assert.Error(t, err, "unknown hobby")
}

func TestRemoveHobbyCascadesToQuests(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	hobby, err := env.quests.AddHobby(ctx, user.ID, "Chess", "openings and endgames")
	require.NoError(t, err)

	_, err = env.quests.AddHobby(ctx, user.ID, "Chess", "")
	assert.Error(t, err, "duplicate hobby name")

	tagged, err := env.quests.AddCustomQuest(ctx, user.ID, CustomQuestInput{
		Title:    "Study one opening",
		Category: models.CategoryHobbies,
		HobbyID:  hobby.ID,
		XPValue:  25,
	})
	require.NoError(t, err)

	untagged, err := env.quests.AddCustomQuest(ctx, user.ID, CustomQuestInput{
		Title:    "Meal prep Sunday",
		Category: models.CategoryHealth,
		XPValue:  30,
	})
	require.NoError(t, err)

	require.NoError(t, env.quests.RemoveHobby(ctx, user.ID, hobby.ID))

	hobbies, err := env.quests.GetHobbies(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, hobbies)

	log, err := env.quests.GetQuests(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, log.CustomQuests, 1)
	assert.Equal(t, untagged.ID, log.CustomQuests[0].ID)
	_ = tagged
}

func TestAcceptCoachProposal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	quest, err := env.quests.AcceptCoachProposal(ctx, user.ID, CustomQuestInput{
		Title:    "Walk after every meal",
		Category: models.CategoryHealth,
		XPValue:  20,
	}, "You mentioned afternoon energy dips; short walks help.")
	require.NoError(t, err)
	assert.Equal(t, models.QuestTypeCustom, quest.Type)

	proposals, err := env.questRepo.GetCoachProposals(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, quest.ID, proposals[0].QuestID)
	assert.NotEmpty(t, proposals[0].Rationale)
}

func TestActivateNonDailyTemplate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	quest, err := env.quests.ActivateQuest(ctx, user.ID, models.QuestTypeShort, models.CategoryHealth, "Couch to 5k")
	require.NoError(t, err)
	assert.Equal(t, models.QuestTypeShort, quest.Type)
	assert.NotEmpty(t, quest.MicroGoals)
	for _, goal := range quest.MicroGoals {
		assert.NotEmpty(t, goal.ID)
		assert.False(t, goal.Completed)
	}

	_, err = env.quests.ActivateQuest(ctx, user.ID, models.QuestTypeShort, models.CategoryHealth, "No such template")
	assert.Error(t, err)
}
