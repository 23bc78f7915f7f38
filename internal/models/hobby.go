package models

import "time"

// Hobby is a user-defined subcategory partitioning quests under the
// synthetic hobbies category. Deleting a hobby cascades to its quests.
type Hobby struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
