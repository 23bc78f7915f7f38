package models

import "time"

// CoachProposal is a quest synthesized by the AI coaching tool. It carries
// the same creation inputs a user would supply in the create-quest flow,
// plus the coach's rationale, and is kept as an audit trail of what the
// coach suggested and the user accepted.
type CoachProposal struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Category    Category            `json:"category"`
	XPValue     int                 `json:"xp_value"`
	MicroGoals  []MicroGoalTemplate `json:"micro_goals,omitempty"`
	Rationale   string              `json:"rationale,omitempty"`
	QuestID     string              `json:"quest_id"`
	CreatedAt   time.Time           `json:"created_at"`
}
