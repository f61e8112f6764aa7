package domain

import (
	"sort"
	"time"
)

const dayKeyLayout = "2006-01-02"

// Streaks computes the current and longest run of completions. A run is a
// stretch of consecutive periods (days, Monday-based weeks or calendar
// months, per the habit frequency) each containing at least one completion.
// The current streak still counts when the present period has no completion
// yet, as long as the previous period does.
func Streaks(dates []string, frequency Frequency, today time.Time) (current, longest int) {
	if len(dates) == 0 {
		return 0, 0
	}

	periods := make(map[int]bool, len(dates))
	var keys []int
	for _, d := range dates {
		day, err := time.Parse(dayKeyLayout, d)
		if err != nil {
			continue
		}
		p := periodIndex(day, frequency)
		if !periods[p] {
			periods[p] = true
			keys = append(keys, p)
		}
	}
	if len(keys) == 0 {
		return 0, 0
	}
	sort.Ints(keys)

	run := 1
	longest = 1
	for i := 1; i < len(keys); i++ {
		if keys[i] == keys[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	now := periodIndex(today, frequency)
	last := keys[len(keys)-1]
	if last != now && last != now-1 {
		return 0, longest
	}
	// run still holds the length of the trailing run.
	return run, longest
}

// periodIndex maps a day to a monotonically increasing period number:
// days since epoch for daily habits, weeks since epoch (Monday-based) for
// weekly ones, months since year zero for monthly ones.
func periodIndex(day time.Time, frequency Frequency) int {
	switch frequency {
	case FrequencyWeekly:
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		// Unix epoch was a Thursday; shift so weeks split on Monday.
		return (int(day.Unix()/86400) + 3) / 7
	case FrequencyMonthly:
		return day.Year()*12 + int(day.Month()) - 1
	default:
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		return int(day.Unix() / 86400)
	}
}
