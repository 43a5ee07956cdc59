package habit

import "github.com/sadopc/lunafocus/internal/datekey"

// ComputeStreak counts consecutive completed days ending at today.
//
// A missed today yields 0. A completed today counts; any other status for
// today is ignored. From yesterday backward, Completed increments, Skipped
// continues without incrementing, and anything else ends the walk.
func ComputeStreak(statuses map[datekey.Key]Status, today datekey.Key) int {
	streak := 0
	switch statuses[today] {
	case Missed:
		return 0
	case Completed:
		streak++
	}

	// The walk visits at most one day per recorded entry before it must hit
	// an absent day.
	for day, steps := today.AddDays(-1), 0; steps <= len(statuses); day, steps = day.AddDays(-1), steps+1 {
		switch statuses[day] {
		case Completed:
			streak++
		case Skipped:
		default:
			return streak
		}
	}
	return streak
}
