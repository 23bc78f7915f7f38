package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/repository"
	"github.com/lifequest/lifequest-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store         *storage.MemoryStore
	userRepo      *repository.UserRepository
	questRepo     *repository.QuestRepository
	users         *UserService
	quests        *QuestService
	recovery      *RecoveryService
	feed          *FeedService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := storage.NewMemoryStore()
	userRepo := repository.NewUserRepository(store)
	questRepo := repository.NewQuestRepository(store)
	recoveryRepo := repository.NewRecoveryRepository(store)
	feedRepo := repository.NewFeedRepository(store)
	notificationRepo := repository.NewNotificationRepository(store)

	users := NewUserService(userRepo)
	notifications := NewNotificationService(notificationRepo, userRepo)
	quests := NewQuestService(questRepo, users, notifications)
	recovery := NewRecoveryService(recoveryRepo)
	feed := NewFeedService(feedRepo, userRepo)

	return &testEnv{
		store:         store,
		userRepo:      userRepo,
		questRepo:     questRepo,
		users:         users,
		quests:        quests,
		recovery:      recovery,
		feed:          feed,
		notifications: notifications,
	}
}

func (e *testEnv) newUser(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := e.users.RegisterUser(context.Background(), username, fmt.Sprintf("%s@example.com", username), "password123")
	require.NoError(t, err)
	return user
}

// setNow pins every clock in the environment to the same instant.
func (e *testEnv) setNow(at time.Time) {
	nowFn := func() time.Time { return at }
	e.users.now = nowFn
	e.quests.now = nowFn
	e.recovery.now = nowFn
	e.feed.now = nowFn
	e.notifications.now = nowFn
}

func TestRegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.newUser(t, "alice")
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, 1, user.Level)
	assert.False(t, user.Onboarded)

	_, err := env.users.RegisterUser(ctx, "other", "alice@example.com", "password123")
	assert.Error(t, err, "duplicate email must be rejected")

	_, err = env.users.RegisterUser(ctx, "alice", "fresh@example.com", "password123")
	assert.Error(t, err, "duplicate username must be rejected")

	authed, err := env.users.AuthenticateUser(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = env.users.AuthenticateUser(ctx, "alice@example.com", "wrong-password")
	assert.Error(t, err)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.users.RegisterUser(ctx, "", "a@example.com", "password123")
	assert.Error(t, err)

	_, err = env.users.RegisterUser(ctx, "bob", "not-an-email", "password123")
	assert.Error(t, err)

	_, err = env.users.RegisterUser(ctx, "bob", "bob@example.com", "short")
	assert.Error(t, err)
}

func TestAddXPAccounting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	// New user, health at zero: 1200 XP lands them at level 2 everywhere.
	updated, err := env.users.AddXP(ctx, user.ID, models.CategoryHealth, 1200)
	require.NoError(t, err)

	health := updated.Categories[models.CategoryHealth]
	require.NotNil(t, health)
	assert.Equal(t, 1200, health.XP)
	assert.Equal(t, 2, health.Level)
	assert.Equal(t, 1200, updated.TotalXP)
	assert.Equal(t, 2, updated.Level)

	updated, err = env.users.AddXP(ctx, user.ID, models.CategoryWealth, 300)
	require.NoError(t, err)
	assert.Equal(t, 300, updated.Categories[models.CategoryWealth].XP)

	total := 0
	for _, progress := range updated.Categories {
		total += progress.XP
	}
	assert.Equal(t, total, updated.TotalXP, "total XP must equal the sum over categories")
	assert.Equal(t, 1500, updated.TotalXP)
}

func TestAddXPValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	_, err := env.users.AddXP(ctx, user.ID, models.CategoryHealth, 0)
	assert.Error(t, err)

	_, err = env.users.AddXP(ctx, user.ID, models.Category("nonsense"), 10)
	assert.Error(t, err)
}

func TestLoginStreakTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	day1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	env.setNow(day1)
	updated, err := env.users.AddXP(ctx, user.ID, models.CategoryHealth, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.StreakCount)
	assert.Equal(t, 1, updated.LongestStreak)

	// Second award the same day does not move the streak.
	updated, err = env.users.AddXP(ctx, user.ID, models.CategoryHealth, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.StreakCount)

	// Next calendar day extends it.
	env.setNow(day1.AddDate(0, 0, 1))
	updated, err = env.users.AddXP(ctx, user.ID, models.CategoryHealth, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.StreakCount)
	assert.Equal(t, 2, updated.LongestStreak)

	// A gap of two days resets to 1; longest stays.
	env.setNow(day1.AddDate(0, 0, 4))
	updated, err = env.users.AddXP(ctx, user.ID, models.CategoryHealth, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.StreakCount)
	assert.Equal(t, 2, updated.LongestStreak)
}

func TestTodayXPAndDayHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	day1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	env.setNow(day1)

	_, err := env.users.AddXP(ctx, user.ID, models.CategoryHealth, 40)
	require.NoError(t, err)
	updated, err := env.users.AddXP(ctx, user.ID, models.CategoryMental, 25)
	require.NoError(t, err)

	assert.Equal(t, 65, updated.TodayXP)

	record := updated.DayHistory[models.DateKey(day1)]
	require.NotNil(t, record)
	assert.True(t, record.LoggedIn)
	assert.Equal(t, 65, record.XPEarned)
	assert.Equal(t, 40, record.CategoryXP[models.CategoryHealth])
	assert.Equal(t, 25, record.CategoryXP[models.CategoryMental])

	// A new day starts today's counter over.
	env.setNow(day1.AddDate(0, 0, 1))
	updated, err = env.users.AddXP(ctx, user.ID, models.CategoryHealth, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TodayXP)
	assert.Len(t, updated.DayHistory, 2)
}

func TestCompleteOnboarding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	updated, err := env.users.CompleteOnboarding(ctx, user.ID, OnboardingInput{
		Username:   "alice_lvl1",
		Categories: []models.Category{models.CategoryHealth, models.CategoryMental},
		Privacy: map[models.Category]models.Privacy{
			models.CategoryHealth: models.PrivacyPublic,
		},
		Communities: []string{"morning-runners"},
	})
	require.NoError(t, err)

	assert.True(t, updated.Onboarded)
	assert.Equal(t, "alice_lvl1", updated.Username)
	assert.True(t, updated.Categories[models.CategoryHealth].Enabled)
	assert.True(t, updated.Categories[models.CategoryMental].Enabled)
	assert.False(t, updated.Categories[models.CategoryWealth].Enabled)
	assert.Equal(t, models.PrivacyPublic, updated.Categories[models.CategoryHealth].Privacy)
	assert.Equal(t, models.PrivacyFriends, updated.Categories[models.CategoryMental].Privacy)

	// Earn some XP, then redo onboarding: choices overwrite, XP survives.
	_, err = env.users.AddXP(ctx, user.ID, models.CategoryHealth, 500)
	require.NoError(t, err)

	updated, err = env.users.CompleteOnboarding(ctx, user.ID, OnboardingInput{
		Username:   "alice_lvl1",
		Categories: []models.Category{models.CategoryWealth},
	})
	require.NoError(t, err)
	assert.False(t, updated.Categories[models.CategoryHealth].Enabled)
	assert.True(t, updated.Categories[models.CategoryWealth].Enabled)
	assert.Equal(t, 500, updated.Categories[models.CategoryHealth].XP)

	_, err = env.users.CompleteOnboarding(ctx, user.ID, OnboardingInput{
		Username:   "alice_lvl1",
		Categories: []models.Category{models.Category("bogus")},
	})
	assert.Error(t, err)
}

func TestFriendRequestFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")

	assert.Error(t, env.users.SendFriendRequest(ctx, alice.ID, alice.ID), "self request must fail")

	require.NoError(t, env.users.SendFriendRequest(ctx, alice.ID, bob.ID))
	assert.Error(t, env.users.SendFriendRequest(ctx, alice.ID, bob.ID), "duplicate send must fail")
	assert.Error(t, env.users.SendFriendRequest(ctx, bob.ID, alice.ID), "cross request must point at the pending one")

	// Bob has the request, a stranger does not.
	assert.Error(t, env.users.AcceptFriendRequest(ctx, alice.ID, bob.ID))

	require.NoError(t, env.users.AcceptFriendRequest(ctx, bob.ID, alice.ID))

	aliceAfter, err := env.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	bobAfter, err := env.users.GetUser(ctx, bob.ID)
	require.NoError(t, err)

	assert.Contains(t, aliceAfter.Friends, bob.ID)
	assert.Contains(t, bobAfter.Friends, alice.ID)
	assert.Empty(t, aliceAfter.FriendRequestsSent)
	assert.Empty(t, bobAfter.FriendRequestsReceived)

	friends, err := env.users.GetFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].Username)

	require.NoError(t, env.users.RemoveFriend(ctx, alice.ID, bob.ID))
	aliceAfter, err = env.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceAfter.Friends)
}

func TestRejectFriendRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")

	require.NoError(t, env.users.SendFriendRequest(ctx, alice.ID, bob.ID))
	require.NoError(t, env.users.RejectFriendRequest(ctx, bob.ID, alice.ID))

	aliceAfter, err := env.users.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	bobAfter, err := env.users.GetUser(ctx, bob.ID)
	require.NoError(t, err)

	assert.Empty(t, aliceAfter.FriendRequestsSent)
	assert.Empty(t, bobAfter.FriendRequestsReceived)
	assert.Empty(t, aliceAfter.Friends)

	// After a rejection a fresh request is allowed again.
	assert.NoError(t, env.users.SendFriendRequest(ctx, alice.ID, bob.ID))
}

func TestFriendOperationsRejectSelf(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")

	// A user's own id can arrive straight from the request path; every
	// pair operation must bail out instead of hanging on its own lock.
	assert.Error(t, env.users.SendFriendRequest(ctx, alice.ID, alice.ID))
	assert.Error(t, env.users.AcceptFriendRequest(ctx, alice.ID, alice.ID))
	assert.Error(t, env.users.RejectFriendRequest(ctx, alice.ID, alice.ID))
	assert.Error(t, env.users.RemoveFriend(ctx, alice.ID, alice.ID))

	// The account stays fully usable afterwards.
	_, err := env.users.AddXP(ctx, alice.ID, models.CategoryHealth, 10)
	assert.NoError(t, err)
}
