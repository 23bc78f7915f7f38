package models

// Category is one of the fixed life areas quests and XP are tracked under.
type Category string

const (
	CategoryHealth     Category = "health"
	CategoryWealth     Category = "wealth"
	CategorySocial     Category = "social"
	CategoryDiscipline Category = "discipline"
	CategoryMental     Category = "mental"
	CategoryRecovery   Category = "recovery"
	// CategoryHobbies is synthetic: it has no system catalog and is
	// partitioned by user-defined hobby subcategories instead.
	CategoryHobbies Category = "hobbies"
)

// AllowedCategories is the closed set of valid categories.
var AllowedCategories = map[Category]bool{
	CategoryHealth:     true,
	CategoryWealth:     true,
	CategorySocial:     true,
	CategoryDiscipline: true,
	CategoryMental:     true,
	CategoryRecovery:   true,
	CategoryHobbies:    true,
}

// CatalogCategories lists the categories that carry a system quest catalog,
// in stable order. Hobbies is excluded: its quests are always user-authored.
var CatalogCategories = []Category{
	CategoryHealth,
	CategoryWealth,
	CategorySocial,
	CategoryDiscipline,
	CategoryMental,
	CategoryRecovery,
}

// Privacy controls who may see a category's progress.
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyFriends Privacy = "friends"
	PrivacyPrivate Privacy = "private"
)

// CategoryProgress tracks a user's XP inside one category. Level is always
// derived from XP, never set directly.
type CategoryProgress struct {
	XP      int     `json:"xp"`
	Level   int     `json:"level"`
	Privacy Privacy `json:"privacy"`
	Enabled bool    `json:"enabled"`
}
