package services

import (
	"sort"

	"communa/tribune/internal/models/entities"
)

// LevelChange describes a level transition between two point totals.
type LevelChange struct {
	OldLevel entities.Level
	NewLevel entities.Level
}

// LevelFor returns the level whose range contains points. With a
// misconfigured or empty table it falls back to the lowest configured
// level (or a bare level 1 when there is no table at all).
func LevelFor(points int, table []entities.Level) entities.Level {
	if len(table) == 0 {
		table = entities.DefaultLevelTable
	}

	sorted := make([]entities.Level, len(table))
	copy(sorted, table)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinPoints < sorted[j].MinPoints
	})

	// Highest-ranked matching range wins.
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Contains(points) {
			return sorted[i]
		}
	}
	return sorted[0]
}

// CheckLevelUp reports the transition caused by moving from oldPoints
// to newPoints, or nil when the level did not increase. Pure and
// deterministic.
func CheckLevelUp(oldPoints, newPoints int, table []entities.Level) *LevelChange {
	oldLevel := LevelFor(oldPoints, table)
	newLevel := LevelFor(newPoints, table)

	if newLevel.Level <= oldLevel.Level {
		return nil
	}
	return &LevelChange{OldLevel: oldLevel, NewLevel: newLevel}
}
