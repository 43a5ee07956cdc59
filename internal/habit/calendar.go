package habit

import (
	"time"

	"github.com/sadopc/lunafocus/internal/datekey"
)

// Day is one cell of a month grid.
type Day struct {
	Date           datekey.Key
	Day            int
	IsCurrentMonth bool
	IsToday        bool
}

// Month returns the calendar grid for month, padded with days from the
// adjacent months so it covers whole Sunday-first weeks.
func Month(year int, month time.Month, today datekey.Key) []Day {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1)

	var days []Day
	add := func(t time.Time, current bool) {
		key := datekey.FromTime(t)
		days = append(days, Day{
			Date:           key,
			Day:            t.Day(),
			IsCurrentMonth: current,
			IsToday:        key == today,
		})
	}

	for i := int(first.Weekday()); i > 0; i-- {
		add(first.AddDate(0, 0, -i), false)
	}
	for t := first; !t.After(last); t = t.AddDate(0, 0, 1) {
		add(t, true)
	}
	for i := 1; i < 7-int(last.Weekday()); i++ {
		add(last.AddDate(0, 0, i), false)
	}
	return days
}

// Stats counts statuses across the current-month cells of a grid.
type Stats struct {
	Completed int
	Missed    int
	Skipped   int
}

// MonthlyStats tallies the statuses recorded on the in-month days of grid.
func MonthlyStats(statuses map[datekey.Key]Status, grid []Day) Stats {
	var s Stats
	for _, d := range grid {
		if !d.IsCurrentMonth {
			continue
		}
		switch statuses[d.Date] {
		case Completed:
			s.Completed++
		case Missed:
			s.Missed++
		case Skipped:
			s.Skipped++
		}
	}
	return s
}
