package models

import "time"

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"` // e.g. "quest_completed", "streak_at_risk"
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	TargetID  string    `json:"target_id,omitempty"` // optional reference to a quest/activity
	CreatedAt time.Time `json:"created_at"`
}
