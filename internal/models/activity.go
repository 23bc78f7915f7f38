package models

import "time"

type ActivityType string

const (
	ActivityQuestCompleted     ActivityType = "quest_completed"
	ActivityMilestoneCompleted ActivityType = "milestone_completed"
)

// Comment is a feed comment. Replies nest exactly one level deep; a reply
// never carries replies of its own.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Replies   []Comment `json:"replies,omitempty"`
}

// Activity is one posted achievement in the social feed, with the posting
// user's identity captured as a snapshot at post time.
type Activity struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	Username   string       `json:"username"`
	Avatar     Avatar       `json:"avatar"`
	Type       ActivityType `json:"type"`
	QuestTitle string       `json:"quest_title"`
	Category   Category     `json:"category"`
	XPEarned   int          `json:"xp_earned"`
	MediaURL   string       `json:"media_url,omitempty"`
	Caption    string       `json:"caption,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
	Likes      []string     `json:"likes"`
	Comments   []Comment    `json:"comments"`
}
