package services

import (
	"context"
	"testing"
	"time"

	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostActivityAndFeedOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	base := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	env.setNow(base)
	first, err := env.feed.PostActivity(ctx, user.ID, ActivityInput{
		Type:       models.ActivityQuestCompleted,
		QuestTitle: "Run 5k",
		Category:   models.CategoryHealth,
		XPEarned:   50,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Username)
	assert.NotNil(t, first.Likes)
	assert.NotNil(t, first.Comments)

	env.setNow(base.Add(time.Hour))
	second, err := env.feed.PostActivity(ctx, user.ID, ActivityInput{
		Type:       models.ActivityMilestoneCompleted,
		QuestTitle: "Run 1k without stopping",
		Category:   models.CategoryHealth,
		XPEarned:   25,
		Caption:    "halfway there",
	})
	require.NoError(t, err)

	feed, err := env.feed.GetFeed(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(feed), 2)
	assert.Equal(t, second.ID, feed[0].ID, "newest activity comes first")
	assert.Equal(t, first.ID, feed[1].ID)
	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].Timestamp.After(feed[i-1].Timestamp), "feed is sorted newest first")
	}
}

func TestPostActivityValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	_, err := env.feed.PostActivity(ctx, user.ID, ActivityInput{Type: "bogus", QuestTitle: "x"})
	assert.Error(t, err)

	_, err = env.feed.PostActivity(ctx, user.ID, ActivityInput{Type: models.ActivityQuestCompleted})
	assert.Error(t, err)
}

func TestSeedFeedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.feed.SeedFeed(ctx))
	feed, err := env.feed.GetFeed(ctx)
	require.NoError(t, err)
	seeded := len(feed)
	assert.Equal(t, 5, seeded)

	// Seeding again must not duplicate the mock activities.
	require.NoError(t, env.feed.SeedFeed(ctx))
	feed, err = env.feed.GetFeed(ctx)
	require.NoError(t, err)
	assert.Len(t, feed, seeded)
}

func TestToggleLike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	activity, err := env.feed.PostActivity(ctx, user.ID, ActivityInput{
		Type:       models.ActivityQuestCompleted,
		QuestTitle: "Read 20 pages",
		Category:   models.CategoryMental,
		XPEarned:   30,
	})
	require.NoError(t, err)

	liked, err := env.feed.ToggleLike(ctx, user.ID, activity.ID)
	require.NoError(t, err)
	assert.Contains(t, liked.Likes, user.ID)

	unliked, err := env.feed.ToggleLike(ctx, user.ID, activity.ID)
	require.NoError(t, err)
	assert.NotContains(t, unliked.Likes, user.ID)

	_, err = env.feed.ToggleLike(ctx, user.ID, "no-such-activity")
	assert.ErrorIs(t, err, repository.ErrActivityNotFound)
}

func TestToggleLikeOnSeededActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "alice")

	require.NoError(t, env.feed.SeedFeed(ctx))
	feed, err := env.feed.GetFeed(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, feed)

	liked, err := env.feed.ToggleLike(ctx, user.ID, feed[0].ID)
	require.NoError(t, err)
	assert.Contains(t, liked.Likes, user.ID)
}

func TestCommentsAndReplies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")

	activity, err := env.feed.PostActivity(ctx, alice.ID, ActivityInput{
		Type:       models.ActivityQuestCompleted,
		QuestTitle: "Meditate 10 minutes",
		Category:   models.CategoryMental,
		XPEarned:   20,
	})
	require.NoError(t, err)

	top, err := env.feed.AddComment(ctx, bob.ID, activity.ID, "nice one", "")
	require.NoError(t, err)
	assert.Equal(t, "bob", top.Username)

	reply, err := env.feed.AddComment(ctx, alice.ID, activity.ID, "thanks!", top.ID)
	require.NoError(t, err)

	// Replying to a reply is rejected; the thread stays one level deep.
	_, err = env.feed.AddComment(ctx, bob.ID, activity.ID, "too deep", reply.ID)
	assert.ErrorIs(t, err, ErrReplyTooDeep)

	_, err = env.feed.AddComment(ctx, bob.ID, activity.ID, "orphan", "no-such-comment")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	feed, err := env.feed.GetFeed(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, feed)
	require.Len(t, feed[0].Comments, 1)
	require.Len(t, feed[0].Comments[0].Replies, 1)
	assert.Equal(t, "thanks!", feed[0].Comments[0].Replies[0].Text)
}

func TestDeleteCommentOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")

	activity, err := env.feed.PostActivity(ctx, alice.ID, ActivityInput{
		Type:       models.ActivityQuestCompleted,
		QuestTitle: "No-spend day",
		Category:   models.CategoryWealth,
		XPEarned:   40,
	})
	require.NoError(t, err)

	comment, err := env.feed.AddComment(ctx, bob.ID, activity.ID, "inspiring", "")
	require.NoError(t, err)
	reply, err := env.feed.AddComment(ctx, alice.ID, activity.ID, "try it", comment.ID)
	require.NoError(t, err)

	err = env.feed.DeleteComment(ctx, alice.ID, activity.ID, comment.ID)
	assert.ErrorIs(t, err, ErrNotCommentOwner)

	// The reply's author can remove their own reply without touching the parent.
	require.NoError(t, env.feed.DeleteComment(ctx, alice.ID, activity.ID, reply.ID))

	feed, err := env.feed.GetFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed[0].Comments, 1)
	assert.Empty(t, feed[0].Comments[0].Replies)

	require.NoError(t, env.feed.DeleteComment(ctx, bob.ID, activity.ID, comment.ID))

	err = env.feed.DeleteComment(ctx, bob.ID, activity.ID, "no-such-comment")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}
