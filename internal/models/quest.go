package models

import "time"

type QuestType string

const (
	QuestTypeDaily  QuestType = "daily"
	QuestTypeShort  QuestType = "short"
	QuestTypeLong   QuestType = "long"
	QuestTypeCustom QuestType = "custom"
)

type QuestStatus string

const (
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusFailed    QuestStatus = "failed"
)

// MicroGoal is an independently completable sub-step of a quest. Completing
// it awards its own XP regardless of the parent quest's state.
type MicroGoal struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	XPValue   int    `json:"xp_value"`
}

// QuestReflection is an optional note attached when completing a quest.
type QuestReflection struct {
	Text      string    `json:"text"`
	Mood      string    `json:"mood,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Quest is a tracked task. It is created active and transitions once to
// completed; cancellation deletes it outright.
type Quest struct {
	ID            string           `json:"id"`
	Type          QuestType        `json:"type"`
	Category      Category         `json:"category"`
	HobbyID       string           `json:"hobby_id,omitempty"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	XPValue       int              `json:"xp_value"`
	Status        QuestStatus      `json:"status"`
	StartDate     time.Time        `json:"start_date"`
	EndDate       *time.Time       `json:"end_date,omitempty"`
	CompletedDate *time.Time       `json:"completed_date,omitempty"`
	MicroGoals    []MicroGoal      `json:"micro_goals,omitempty"`
	Reflection    *QuestReflection `json:"reflection,omitempty"`
}

// QuestLog is the persisted quest state of one user: quests activated from
// the system catalog plus user-authored custom quests.
type QuestLog struct {
	Quests       []Quest `json:"quests"`
	CustomQuests []Quest `json:"custom_quests"`
}

// All returns catalog and custom quests as one slice.
func (l *QuestLog) All() []Quest {
	out := make([]Quest, 0, len(l.Quests)+len(l.CustomQuests))
	out = append(out, l.Quests...)
	out = append(out, l.CustomQuests...)
	return out
}

// QuestTemplate is a catalog entry a quest can be activated from.
// Templates are static data, never persisted.
type QuestTemplate struct {
	Type        QuestType           `json:"type"`
	Category    Category            `json:"category"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	XPValue     int                 `json:"xp_value"`
	MicroGoals  []MicroGoalTemplate `json:"micro_goals,omitempty"`
}

type MicroGoalTemplate struct {
	Title   string `json:"title"`
	XPValue int    `json:"xp_value"`
}
