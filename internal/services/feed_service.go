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

// FeedService owns the social activity feed: posted achievements, likes
// and one-level-deep comment threads.
type FeedService struct {
	repo     *repository.FeedRepository
	userRepo *repository.UserRepository
	now      func() time.Time
}

// NewFeedService creates a new instance of FeedService.
func NewFeedService(repo *repository.FeedRepository, userRepo *repository.UserRepository) *FeedService {
	return &FeedService{
		repo:     repo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// ActivityInput is a posted achievement.
type ActivityInput struct {
	Type       models.ActivityType `json:"type"`
	QuestTitle string              `json:"quest_title"`
	Category   models.Category     `json:"category"`
	XPEarned   int                 `json:"xp_earned"`
	MediaURL   string              `json:"media_url,omitempty"`
	Caption    string              `json:"caption,omitempty"`
}

// PostActivity prepends a new activity owned by the given user, capturing
// their username and avatar as a snapshot.
func (s *FeedService) PostActivity(ctx context.Context, userID string, input ActivityInput) (*models.Activity, error) {
	if input.Type != models.ActivityQuestCompleted && input.Type != models.ActivityMilestoneCompleted {
		return nil, fmt.Errorf("invalid activity type: %s", input.Type)
	}
	if input.QuestTitle == "" {
		return nil, fmt.Errorf("quest title is required")
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	activity := &models.Activity{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Username:   user.Username,
		Avatar:     user.Avatar,
		Type:       input.Type,
		QuestTitle: input.QuestTitle,
		Category:   input.Category,
		XPEarned:   input.XPEarned,
		MediaURL:   input.MediaURL,
		Caption:    input.Caption,
		Timestamp:  s.now(),
		Likes:      []string{},
		Comments:   []models.Comment{},
	}

	if err := s.repo.PrependActivity(ctx, activity); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":     userID,
		"activity_id": activity.ID,
		"type":        activity.Type,
	}).Info("Activity posted")
	return activity, nil
}

// GetFeed returns the combined feed, most recent first. The seeded
// stand-in activities fill the feed until real friends post.
func (s *FeedService) GetFeed(ctx context.Context) ([]models.Activity, error) {
	activities, err := s.repo.GetActivities(ctx)
	if err != nil {
		return nil, err
	}
	seeded, err := s.repo.GetMockActivities(ctx)
	if err != nil {
		return nil, err
	}

	feed := append(activities, seeded...)
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Timestamp.After(feed[j].Timestamp)
	})
	return feed, nil
}

// ToggleLike flips the user's membership in the activity's like set.
func (s *FeedService) ToggleLike(ctx context.Context, userID, activityID string) (*models.Activity, error) {
	return s.repo.UpdateActivity(ctx, activityID, func(activity *models.Activity) error {
		if containsString(activity.Likes, userID) {
			activity.Likes = removeString(activity.Likes, userID)
		} else {
			activity.Likes = append(activity.Likes, userID)
		}
		return nil
	})
}

// AddComment appends a top-level comment, or a reply when parentID names a
// top-level comment. Replying to a reply is rejected: threads stay exactly
// one level deep.
func (s *FeedService) AddComment(ctx context.Context, userID, activityID, text, parentID string) (*models.Comment, error) {
	if text == "" {
		return nil, fmt.Errorf("comment text is required")
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Text:      text,
		Timestamp: s.now(),
	}

	_, err = s.repo.UpdateActivity(ctx, activityID, func(activity *models.Activity) error {
		if parentID == "" {
			activity.Comments = append(activity.Comments, comment)
			return nil
		}

		for i := range activity.Comments {
			parent := &activity.Comments[i]
			if parent.ID == parentID {
				parent.Replies = append(parent.Replies, comment)
				return nil
			}
			for _, reply := range parent.Replies {
				if reply.ID == parentID {
					return ErrReplyTooDeep
				}
			}
		}
		return ErrCommentNotFound
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment or reply, but only for its author.
func (s *FeedService) DeleteComment(ctx context.Context, userID, activityID, commentID string) error {
	_, err := s.repo.UpdateActivity(ctx, activityID, func(activity *models.Activity) error {
		for i := range activity.Comments {
			comment := &activity.Comments[i]
			if comment.ID == commentID {
				if comment.UserID != userID {
					return ErrNotCommentOwner
				}
				activity.Comments = append(activity.Comments[:i], activity.Comments[i+1:]...)
				return nil
			}
			for j := range comment.Replies {
				reply := &comment.Replies[j]
				if reply.ID != commentID {
					continue
				}
				if reply.UserID != userID {
					return ErrNotCommentOwner
				}
				comment.Replies = append(comment.Replies[:j], comment.Replies[j+1:]...)
				return nil
			}
		}
		return ErrCommentNotFound
	})
	return err
}

// SeedFeed writes the stand-in social feed on first boot so the app does
// not look empty before any friends exist. An existing seed is kept.
func (s *FeedService) SeedFeed(ctx context.Context) error {
	base := s.now().Add(-6 * time.Hour)

	seed := []models.Activity{
		mockActivity("maya_runs", models.ActivityQuestCompleted, "Run 5k", models.CategoryHealth, 50, "Sunrise run done before work!", base),
		mockActivity("budget_ben", models.ActivityQuestCompleted, "Track every expense", models.CategoryWealth, 25, "", base.Add(-3*time.Hour)),
		mockActivity("quiet_sam", models.ActivityMilestoneCompleted, "90 days of meditation", models.CategoryMental, 150, "Hit the 30 day milestone today.", base.Add(-8*time.Hour)),
		mockActivity("ironwill_kate", models.ActivityQuestCompleted, "Cold shower", models.CategoryDiscipline, 30, "Day 12 in a row.", base.Add(-16*time.Hour)),
		mockActivity("steady_leo", models.ActivityQuestCompleted, "Get through the evening clean", models.CategoryRecovery, 40, "One evening at a time.", base.Add(-24*time.Hour)),
	}
	return s.repo.SeedMockFeed(ctx, seed)
}

func mockActivity(username string, activityType models.ActivityType, questTitle string, category models.Category, xp int, caption string, at time.Time) models.Activity {
	return models.Activity{
		ID:         uuid.NewString(),
		UserID:     uuid.NewString(),
		Username:   username,
		Type:       activityType,
		QuestTitle: questTitle,
		Category:   category,
		XPEarned:   xp,
		Caption:    caption,
		Timestamp:  at,
		Likes:      []string{},
		Comments:   []models.Comment{},
	}
}
