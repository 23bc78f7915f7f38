package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates the business logic for user accounts and
// progression: XP accounting, levels, login streaks and friendships.
type UserService struct {
	repo *repository.UserRepository
	now  func() time.Time
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{
		repo: repo,
		now:  time.Now,
	}
}

// RegisterUser registers a new user after hashing their password. The user
// starts in a pre-onboarding state with no enabled categories.
func (s *UserService) RegisterUser(ctx context.Context, username, email, password string) (*models.User, error) {
	logrus.Info("Registering new user")

	if username == "" || email == "" || password == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, fmt.Errorf("missing required user fields")
	}
	if !emailRegex.MatchString(email) {
		logrus.WithField("email", email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("invalid email format")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	now := s.now()
	user := &models.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		HashedPassword: string(hashedPwd),
		Role:           "user",
		Level:          1,
		JoinDate:       now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	user.EnsureDefaults()

	if err := s.repo.CreateUser(ctx, user); err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"userID": user.ID,
		"role":   user.Role,
	}).Info("User registered successfully")

	return user, nil
}

// AuthenticateUser verifies the credentials and returns the user.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Failed login attempt")
		return nil, fmt.Errorf("invalid email or password")
	}
	return user, nil
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// GetUserIDs returns every registered user id.
func (s *UserService) GetUserIDs(ctx context.Context) ([]string, error) {
	return s.repo.GetAllUserIDs(ctx)
}

// OnboardingInput is the one-time setup chosen on first launch.
type OnboardingInput struct {
	Username    string                             `json:"username"`
	Categories  []models.Category                  `json:"categories"`
	Privacy     map[models.Category]models.Privacy `json:"privacy"`
	Communities []string                           `json:"communities"`
	Avatar      models.Avatar                      `json:"avatar"`
}

// CompleteOnboarding transitions a fresh account into a configured one.
// Calling it again simply overwrites the previous choices; existing XP in a
// category is never discarded.
func (s *UserService) CompleteOnboarding(ctx context.Context, userID string, input OnboardingInput) (*models.User, error) {
	if input.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	for _, category := range input.Categories {
		if !models.AllowedCategories[category] {
			return nil, fmt.Errorf("invalid category: %s", category)
		}
	}

	taken, err := s.repo.UsernameTaken(ctx, input.Username, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("username already taken")
	}

	user, err := s.repo.UpdateUser(ctx, userID, func(user *models.User) error {
		user.Username = input.Username
		user.Avatar = input.Avatar
		user.Onboarded = true
		user.Communities = input.Communities
		if user.Communities == nil {
			user.Communities = []string{}
		}

		enabled := make(map[models.Category]bool, len(input.Categories))
		for _, category := range input.Categories {
			enabled[category] = true
		}
		for category := range models.AllowedCategories {
			progress, ok := user.Categories[category]
			if !ok {
				progress = &models.CategoryProgress{Level: 1, Privacy: models.PrivacyFriends}
				user.Categories[category] = progress
			}
			progress.Enabled = enabled[category]
			if privacy, ok := input.Privacy[category]; ok {
				progress.Privacy = privacy
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("user_id", userID).Info("Onboarding completed")
	return user, nil
}

// AddXP awards XP to one category and recomputes everything derived from
// it: category level, total XP, overall level, login streak, today's XP
// and the per-day history. One in-memory recomputation, one store write.
func (s *UserService) AddXP(ctx context.Context, userID string, category models.Category, amount int) (*models.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("xp amount must be positive")
	}
	if !models.AllowedCategories[category] {
		return nil, fmt.Errorf("invalid category: %s", category)
	}

	now := s.now()
	today := models.DateKey(now)
	yesterday := models.DateKey(now.AddDate(0, 0, -1))

	user, err := s.repo.UpdateUser(ctx, userID, func(user *models.User) error {
		progress, ok := user.Categories[category]
		if !ok {
			progress = &models.CategoryProgress{Privacy: models.PrivacyFriends, Enabled: true}
			user.Categories[category] = progress
		}
		progress.XP += amount
		progress.Level = models.CalculateLevel(progress.XP)

		total := 0
		for _, p := range user.Categories {
			total += p.XP
		}
		user.TotalXP = total
		user.Level = models.CalculateLevel(total)

		// Login streak moves on calendar dates, not timestamps.
		if user.LastActivityDate != today {
			if user.LastActivityDate == yesterday {
				user.StreakCount++
			} else {
				user.StreakCount = 1
			}
			user.LastActivityDate = today
		}
		if user.StreakCount > user.LongestStreak {
			user.LongestStreak = user.StreakCount
		}

		if user.TodayXPDate != today {
			user.TodayXP = amount
			user.TodayXPDate = today
		} else {
			user.TodayXP += amount
		}

		record, ok := user.DayHistory[today]
		if !ok {
			record = &models.DayRecord{LoggedIn: true, CategoryXP: make(map[models.Category]int)}
			user.DayHistory[today] = record
		}
		if record.CategoryXP == nil {
			record.CategoryXP = make(map[models.Category]int)
		}
		record.LoggedIn = true
		record.XPEarned += amount
		record.CategoryXP[category] += amount

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"category": category,
		"amount":   amount,
		"total_xp": user.TotalXP,
		"level":    user.Level,
	}).Info("XP awarded")

	return user, nil
}

// SendFriendRequest records a pending request on both sides.
func (s *UserService) SendFriendRequest(ctx context.Context, fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("cannot send a friend request to yourself")
	}

	return s.repo.UpdateUserPair(ctx, fromID, toID, func(from, to *models.User) error {
		if containsString(from.Friends, toID) {
			return fmt.Errorf("you are already friends")
		}
		if containsString(from.FriendRequestsSent, toID) {
			return fmt.Errorf("friend request already sent")
		}
		if containsString(from.FriendRequestsReceived, toID) {
			return fmt.Errorf("this user already sent you a request")
		}
		from.FriendRequestsSent = append(from.FriendRequestsSent, toID)
		to.FriendRequestsReceived = append(to.FriendRequestsReceived, fromID)
		return nil
	})
}

// AcceptFriendRequest moves a pending request into both friend lists.
func (s *UserService) AcceptFriendRequest(ctx context.Context, userID, fromID string) error {
	if userID == fromID {
		return fmt.Errorf("cannot respond to a friend request from yourself")
	}

	return s.repo.UpdateUserPair(ctx, userID, fromID, func(user, from *models.User) error {
		if !containsString(user.FriendRequestsReceived, fromID) {
			return fmt.Errorf("no pending friend request from this user")
		}
		user.FriendRequestsReceived = removeString(user.FriendRequestsReceived, fromID)
		from.FriendRequestsSent = removeString(from.FriendRequestsSent, userID)
		if !containsString(user.Friends, fromID) {
			user.Friends = append(user.Friends, fromID)
		}
		if !containsString(from.Friends, userID) {
			from.Friends = append(from.Friends, userID)
		}
		return nil
	})
}

// RejectFriendRequest drops a pending request from both sides.
func (s *UserService) RejectFriendRequest(ctx context.Context, userID, fromID string) error {
	if userID == fromID {
		return fmt.Errorf("cannot respond to a friend request from yourself")
	}

	return s.repo.UpdateUserPair(ctx, userID, fromID, func(user, from *models.User) error {
		if !containsString(user.FriendRequestsReceived, fromID) {
			return fmt.Errorf("no pending friend request from this user")
		}
		user.FriendRequestsReceived = removeString(user.FriendRequestsReceived, fromID)
		from.FriendRequestsSent = removeString(from.FriendRequestsSent, userID)
		return nil
	})
}

// RemoveFriend removes the friendship from both sides.
func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return fmt.Errorf("cannot remove yourself as a friend")
	}

	return s.repo.UpdateUserPair(ctx, userID, friendID, func(user, friend *models.User) error {
		user.Friends = removeString(user.Friends, friendID)
		friend.Friends = removeString(friend.Friends, userID)
		return nil
	})
}

// GetFriends returns the public view of the user's friends.
func (s *UserService) GetFriends(ctx context.Context, userID string) ([]models.PublicUser, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	friends, err := s.repo.GetUsersByIDs(ctx, user.Friends)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %v", err)
	}

	publicFriends := make([]models.PublicUser, 0, len(friends))
	for _, friend := range friends {
		publicFriends = append(publicFriends, friend.Public())
	}
	return publicFriends, nil
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
