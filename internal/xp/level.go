package xp

// levelThresholds[i] is the minimum total XP for level i+2; below the
// first threshold is level 1, at or above the last is level 10.
var levelThresholds = []int64{100, 250, 500, 1000, 2000, 3500, 5500, 8000, 12000}

// MaxLevel is the highest reachable level.
const MaxLevel = 10

// LevelFromXP maps total XP to a level in 1..10. It is a pure step
// function: never decreasing in xp, never above MaxLevel.
func LevelFromXP(xp int64) int {
	level := 1
	for _, threshold := range levelThresholds {
		if xp < threshold {
			break
		}
		level++
	}
	return level
}
