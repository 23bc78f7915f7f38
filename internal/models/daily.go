package models

// DailyQuestLimit caps how many daily quests a user may complete per
// category per calendar day.
const DailyQuestLimit = 3

// DailyQuestState is one user's daily rotation for a single calendar day:
// which catalog titles were drawn per category and how many daily quests
// were already completed per category. The whole struct is replaced when
// the stored date no longer matches today.
type DailyQuestState struct {
	Date           string                `json:"date"`
	Available      map[Category][]string `json:"available_quests_by_category"`
	CompletedCount map[Category]int      `json:"completed_count_by_category"`
}

// IsAvailable reports whether the given title was drawn for the category today.
func (s *DailyQuestState) IsAvailable(category Category, title string) bool {
	for _, t := range s.Available[category] {
		if t == title {
			return true
		}
	}
	return false
}
