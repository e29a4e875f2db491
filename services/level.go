package services

// LevelStep is the XP width of one level. Level 1 covers [0, 100), level 2
// [100, 200), and so on.
const LevelStep int64 = 100

// LevelForXP maps total XP to a level. Level is always derived from XP, never
// stored as an independent fact, so it cannot drift and is monotonic
// nondecreasing as XP accumulates.
func LevelForXP(totalXP int64) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return int(totalXP/LevelStep) + 1
}

// LevelSummary is the UI-facing XP/level breakdown.
type LevelSummary struct {
	TotalXP       int64 `json:"total_xp"`
	Level         int   `json:"level"`
	XPIntoLevel   int64 `json:"xp_into_level"`
	XPToNextLevel int64 `json:"xp_to_next_level"`
}

func SummarizeLevel(totalXP int64) LevelSummary {
	if totalXP < 0 {
		totalXP = 0
	}
	into := totalXP % LevelStep
	return LevelSummary{
		TotalXP:       totalXP,
		Level:         LevelForXP(totalXP),
		XPIntoLevel:   into,
		XPToNextLevel: LevelStep - into,
	}
}

// TotalXP sums the XP rewards of the given unlocked catalog entries. XP is
// granted exactly once per unlock, so the sum over the unlock set is the
// user's total by definition.
func TotalXP(entries []CatalogEntry, unlockedIDs map[string]bool) int64 {
	var sum int64
	for _, e := range entries {
		if unlockedIDs[e.ID] {
			sum += e.XPReward
		}
	}
	return sum
}
