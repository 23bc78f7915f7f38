package models

// XPPerLevel is the flat XP cost of each level.
const XPPerLevel = 1000

// CalculateLevel maps accumulated XP to a level, starting at 1.
func CalculateLevel(xp int) int {
	return xp/XPPerLevel + 1
}

// XPForNextLevel returns how much XP is still missing to reach the next level.
func XPForNextLevel(xp int) int {
	return CalculateLevel(xp)*XPPerLevel - xp
}

// LevelProgress returns the fraction of the current level already earned,
// always in [0, 1).
func LevelProgress(xp int) float64 {
	return float64(xp%XPPerLevel) / float64(XPPerLevel)
}
