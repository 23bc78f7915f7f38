// Package catalog holds the static quest templates users can activate.
// It is data only: the daily rotation draws from these pools, and custom
// quests bypass the catalog entirely.
package catalog

import (
	"math/rand"

	"github.com/lifequest/lifequest-backend/internal/models"
)

var dailyTemplates = map[models.Category][]models.QuestTemplate{
	models.CategoryHealth: {
		daily(models.CategoryHealth, "Run 5k", "Go for a five kilometer run.", 50),
		daily(models.CategoryHealth, "Drink 2L of water", "Stay hydrated through the day.", 20),
		daily(models.CategoryHealth, "30 minute workout", "Strength or cardio, your pick.", 40),
		daily(models.CategoryHealth, "Sleep 8 hours", "Lights out early enough for a full night.", 30),
		daily(models.CategoryHealth, "Take a 20 minute walk", "Fresh air counts double.", 20),
		daily(models.CategoryHealth, "Stretch for 10 minutes", "Loosen up before or after work.", 15),
	},
	models.CategoryWealth: {
		daily(models.CategoryWealth, "Track every expense", "Log everything you spend today.", 25),
		daily(models.CategoryWealth, "No impulse purchases", "Stick to the shopping list.", 30),
		daily(models.CategoryWealth, "Read 10 pages on finance", "Books, not headlines.", 25),
		daily(models.CategoryWealth, "Review your budget", "Check where the month is heading.", 20),
		daily(models.CategoryWealth, "Cook instead of ordering", "Eat in, bank the difference.", 30),
		daily(models.CategoryWealth, "Learn a work skill for 30 minutes", "Invest in your earning power.", 35),
	},
	models.CategorySocial: {
		daily(models.CategorySocial, "Call a friend or family member", "An actual call, not a text.", 30),
		daily(models.CategorySocial, "Give a genuine compliment", "Make someone's day.", 15),
		daily(models.CategorySocial, "Reach out to someone new", "Start one new conversation.", 35),
		daily(models.CategorySocial, "Have a screen-free meal with someone", "Phones away at the table.", 25),
		daily(models.CategorySocial, "Write a thank-you message", "Tell someone what they did for you.", 20),
		daily(models.CategorySocial, "Plan a meetup", "Put a date in the calendar.", 30),
	},
	models.CategoryDiscipline: {
		daily(models.CategoryDiscipline, "Wake up before 7am", "No snooze button.", 40),
		daily(models.CategoryDiscipline, "Make your bed", "Start the day with one win.", 10),
		daily(models.CategoryDiscipline, "No social media before noon", "Mornings belong to you.", 35),
		daily(models.CategoryDiscipline, "Finish your top task first", "Eat the frog before lunch.", 40),
		daily(models.CategoryDiscipline, "Cold shower", "Sixty seconds minimum.", 30),
		daily(models.CategoryDiscipline, "Plan tomorrow tonight", "Write down the top three tasks.", 20),
	},
	models.CategoryMental: {
		daily(models.CategoryMental, "Meditate for 10 minutes", "Sit with your breath.", 30),
		daily(models.CategoryMental, "Journal one page", "Whatever is on your mind.", 25),
		daily(models.CategoryMental, "Read 20 pages", "Any book that stretches you.", 30),
		daily(models.CategoryMental, "Write three gratitudes", "Small things count.", 15),
		daily(models.CategoryMental, "One hour phone-free", "Leave it in another room.", 25),
		daily(models.CategoryMental, "Learn something new for 20 minutes", "A language, an instrument, anything.", 30),
	},
	models.CategoryRecovery: {
		daily(models.CategoryRecovery, "Check in with yourself", "Rate your cravings honestly.", 20),
		daily(models.CategoryRecovery, "Avoid one trigger", "Name it and route around it.", 35),
		daily(models.CategoryRecovery, "Reach out to your support person", "One message is enough.", 30),
		daily(models.CategoryRecovery, "Replace the habit for an hour", "Do the substitute activity instead.", 30),
		daily(models.CategoryRecovery, "Review why you started", "Reread your reasons list.", 15),
		daily(models.CategoryRecovery, "Get through the evening clean", "The hard hours count the most.", 40),
	},
}

var questTemplates = []models.QuestTemplate{
	{
		Type: models.QuestTypeShort, Category: models.CategoryHealth,
		Title: "Couch to 5k", Description: "Build up to running five kilometers over two weeks.", XPValue: 300,
		MicroGoals: []models.MicroGoalTemplate{
			{Title: "Run 1k without stopping", XPValue: 50},
			{Title: "Run 3k without stopping", XPValue: 75},
			{Title: "Run 5k without stopping", XPValue: 100},
		},
	},
	{
		Type: models.QuestTypeShort, Category: models.CategoryWealth,
		Title: "No-spend week", Description: "Seven days of essentials-only spending.", XPValue: 250,
	},
	{
		Type: models.QuestTypeShort, Category: models.CategoryMental,
		Title: "Finish a book", Description: "Pick one book and read it cover to cover.", XPValue: 200,
		MicroGoals: []models.MicroGoalTemplate{
			{Title: "Reach the halfway mark", XPValue: 50},
		},
	},
	{
		Type: models.QuestTypeShort, Category: models.CategoryDiscipline,
		Title: "Seven early mornings", Description: "Up before 7am for a full week.", XPValue: 280,
	},
	{
		Type: models.QuestTypeLong, Category: models.CategoryHealth,
		Title: "Train for a 10k race", Description: "Eight weeks of structured training.", XPValue: 800,
		MicroGoals: []models.MicroGoalTemplate{
			{Title: "Complete week 2 of the plan", XPValue: 100},
			{Title: "Complete week 4 of the plan", XPValue: 100},
			{Title: "Run 8k in training", XPValue: 150},
		},
	},
	{
		Type: models.QuestTypeLong, Category: models.CategoryWealth,
		Title: "Build a 3-month emergency fund", Description: "Save three months of expenses.", XPValue: 1000,
		MicroGoals: []models.MicroGoalTemplate{
			{Title: "One month saved", XPValue: 200},
			{Title: "Two months saved", XPValue: 200},
		},
	},
	{
		Type: models.QuestTypeLong, Category: models.CategorySocial,
		Title: "Host a dinner every month", Description: "Three months, three dinners, your place.", XPValue: 600,
	},
	{
		Type: models.QuestTypeLong, Category: models.CategoryMental,
		Title: "90 days of meditation", Description: "A daily sit for one quarter.", XPValue: 900,
		MicroGoals: []models.MicroGoalTemplate{
			{Title: "30 day milestone", XPValue: 150},
			{Title: "60 day milestone", XPValue: 150},
		},
	},
}

func daily(category models.Category, title, description string, xp int) models.QuestTemplate {
	return models.QuestTemplate{
		Type:        models.QuestTypeDaily,
		Category:    category,
		Title:       title,
		Description: description,
		XPValue:     xp,
	}
}

// DailyPool returns the daily templates of a category.
func DailyPool(category models.Category) []models.QuestTemplate {
	return dailyTemplates[category]
}

// DrawDailyTitles shuffles the category's daily pool and returns the first
// count titles. Gameplay randomness only, so math/rand is fine here.
func DrawDailyTitles(rng *rand.Rand, category models.Category, count int) []string {
	pool := dailyTemplates[category]
	titles := make([]string, len(pool))
	for i, t := range pool {
		titles[i] = t.Title
	}
	rng.Shuffle(len(titles), func(i, j int) {
		titles[i], titles[j] = titles[j], titles[i]
	})
	if count > len(titles) {
		count = len(titles)
	}
	return titles[:count]
}

// FindTemplate looks up a catalog template by type, category and title.
func FindTemplate(questType models.QuestType, category models.Category, title string) (models.QuestTemplate, bool) {
	if questType == models.QuestTypeDaily {
		for _, t := range dailyTemplates[category] {
			if t.Title == title {
				return t, true
			}
		}
		return models.QuestTemplate{}, false
	}
	for _, t := range questTemplates {
		if t.Type == questType && t.Category == category && t.Title == title {
			return t, true
		}
	}
	return models.QuestTemplate{}, false
}

// Templates returns the non-daily catalog entries, optionally filtered by category.
func Templates(category models.Category) []models.QuestTemplate {
	if category == "" {
		return questTemplates
	}
	var out []models.QuestTemplate
	for _, t := range questTemplates {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}
