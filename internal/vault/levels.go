package vault

// levelThresholds maps level N to the minimum XPTotal that reaches it.
// The table is a monotone step function: LevelForXP never decreases as
// XPTotal grows, and XPTotal itself never decreases, so a player's level can
// only ever climb.
var levelThresholds = []int64{
	0,       // level 1
	100,     // level 2
	250,     // level 3
	500,     // level 4
	1_000,   // level 5
	2_000,   // level 6
	3_500,   // level 7
	5_500,   // level 8
	8_000,   // level 9
	11_000,  // level 10
	15_000,  // level 11
	20_000,  // level 12
	26_000,  // level 13
	33_000,  // level 14
	41_000,  // level 15
	50_000,  // level 16
	62_000,  // level 17
	77_000,  // level 18
	95_000,  // level 19
	120_000, // level 20
}

// levelRewards names the reward bundle unlocked at each level. Levels without
// an entry unlock nothing beyond the level itself.
var levelRewards = map[int][]string{
	2:  {"badge.first_steps"},
	5:  {"badge.apprentice", "title.grinder"},
	10: {"badge.veteran", "theme.midnight"},
	15: {"badge.elite", "title.shark"},
	20: {"badge.apex", "theme.inferno", "title.legend"},
}

// LevelForXP returns the level reached at the given lifetime-monotone total.
func LevelForXP(total int64) int {
	level := 1
	for i, threshold := range levelThresholds {
		if total < threshold {
			break
		}
		level = i + 1
	}
	return level
}

// SkillTierForLevel compresses levels into the 1..10 skill tier band.
func SkillTierForLevel(level int) int {
	tier := (level + 1) / 2
	if tier < 1 {
		tier = 1
	}
	if tier > 10 {
		tier = 10
	}
	return tier
}

// RewardsForLevel returns the rewards unlocked by reaching level, in a copy
// the caller may keep.
func RewardsForLevel(level int) []string {
	rewards, ok := levelRewards[level]
	if !ok {
		return nil
	}
	out := make([]string, len(rewards))
	copy(out, rewards)
	return out
}
