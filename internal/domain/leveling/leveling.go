package leveling

// FirstLevel is the level a user starts at when the first credit creates
// the progress row.
const FirstLevel = 1

// NextThreshold returns the number of points needed within the given level
// to advance to the next one. The cost grows linearly: level 1->2 costs
// 100, 2->3 costs 150, and so on. Pure function, no upper bound on level.
func NextThreshold(level int) uint64 {
	return uint64(100 + (level-1)*50)
}

type Result struct {
	Level        int
	Remaining    uint64
	LevelsGained int
}

// Apply consumes points against successive thresholds starting from level.
// A single large credit can cross several thresholds, so this loops rather
// than branching once. It terminates because every threshold is positive
// and the remaining points strictly decrease on each iteration. The
// returned Remaining is always below the threshold of the new level.
func Apply(level int, points uint64) Result {
	gained := 0
	for points >= NextThreshold(level) {
		points -= NextThreshold(level)
		level++
		gained++
	}

	return Result{Level: level, Remaining: points, LevelsGained: gained}
}
