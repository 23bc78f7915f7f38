package models

import "time"

// Avatar is the user's cosmetic customization, stored as an opaque snapshot.
type Avatar struct {
	Skin      string `json:"skin,omitempty"`
	Outfit    string `json:"outfit,omitempty"`
	Accessory string `json:"accessory,omitempty"`
}

// DayRecord is one entry of the per-day history: whether the user was
// active that day and how much XP they earned, overall and per category.
type DayRecord struct {
	LoggedIn   bool             `json:"logged_in"`
	XPEarned   int              `json:"xp_earned"`
	CategoryXP map[Category]int `json:"category_xp"`
}

// User is the aggregate root of all progression state. TotalXP and Level
// are derived: TotalXP always equals the sum of category XP and Level is
// computed from TotalXP on every award, never stored independently.
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	HashedPassword string `json:"hashed_password,omitempty"`
	Role           string `json:"role"`
	Onboarded      bool   `json:"onboarded"`

	Avatar     Avatar                         `json:"avatar"`
	Categories map[Category]*CategoryProgress `json:"categories"`
	TotalXP    int                            `json:"total_xp"`
	Level      int                            `json:"level"`

	StreakCount      int    `json:"streak_count"`
	LongestStreak    int    `json:"longest_streak"`
	LastActivityDate string `json:"last_activity_date,omitempty"`

	TodayXP     int                   `json:"today_xp"`
	TodayXPDate string                `json:"today_xp_date,omitempty"`
	DayHistory  map[string]*DayRecord `json:"day_history"`

	Friends                []string `json:"friends"`
	FriendRequestsSent     []string `json:"friend_requests_sent"`
	FriendRequestsReceived []string `json:"friend_requests_received"`
	Communities            []string `json:"communities"`

	JoinDate  time.Time `json:"join_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnsureDefaults fills in collection fields that may be absent in blobs
// written by older versions.
func (u *User) EnsureDefaults() {
	if u.Categories == nil {
		u.Categories = make(map[Category]*CategoryProgress)
	}
	if u.DayHistory == nil {
		u.DayHistory = make(map[string]*DayRecord)
	}
	if u.Friends == nil {
		u.Friends = []string{}
	}
	if u.FriendRequestsSent == nil {
		u.FriendRequestsSent = []string{}
	}
	if u.FriendRequestsReceived == nil {
		u.FriendRequestsReceived = []string{}
	}
	if u.Communities == nil {
		u.Communities = []string{}
	}
}

// PublicUser is the view of a user exposed to other users.
type PublicUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Avatar      Avatar `json:"avatar"`
	Level       int    `json:"level"`
	StreakCount int    `json:"streak_count"`
}

// Public returns the shareable view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Avatar:      u.Avatar,
		Level:       u.Level,
		StreakCount: u.StreakCount,
	}
}
