package models

import "time"

type RecoveryLogType string

const (
	RecoveryLogSuccess RecoveryLogType = "success"
	RecoveryLogRelapse RecoveryLogType = "relapse"
)

// RecoveryLog is one append-only entry in a recovery item's history.
// Logs are never edited or removed except by deleting the parent item.
type RecoveryLog struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      RecoveryLogType `json:"type"`
	Note      string          `json:"note,omitempty"`
}

// RecoveryItem tracks abstinence from one habit. The four numeric fields
// are derived from Logs and StartDate on every read; the stored values are
// never trusted as source of truth.
type RecoveryItem struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	StartDate   time.Time     `json:"start_date"`
	Logs        []RecoveryLog `json:"logs"`

	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
	TotalDays     int `json:"total_days"`
	RelapseCount  int `json:"relapse_count"`
}
