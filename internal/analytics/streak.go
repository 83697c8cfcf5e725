// Package analytics derives read-only view models (summary statistics,
// streaks, chart series) from a snapshot of writing sessions. Every
// computation is a pure function of its inputs: nothing here mutates a
// session, holds state between calls, or touches a store.
package analytics

import (
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/inkline/writing-service/internal/dateutil"
)

// CurrentStreak returns the number of consecutive writing days ending at
// the most recent date in the set. The streak only counts when the most
// recent date is today or yesterday relative to the reference date; a gap
// of two or more days means the streak is broken and the result is 0.
// Duplicate dates count as a single writing day; malformed dates are
// skipped.
func CurrentStreak(dates []string, today string) int {
	days := parseDistinct(dates)
	if len(days) == 0 {
		return 0
	}
	ref, err := dateutil.Parse(today)
	if err != nil {
		return 0
	}

	// Descending: most recent first.
	slices.Reverse(days)

	if daysBetween(ref, days[0]) > 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i-1], days[i]) != 1 {
			break
		}
		streak++
	}
	return streak
}

// LongestStreak returns the length of the longest run of consecutive
// writing days anywhere in the set: 0 for empty input, at least 1
// otherwise.
func LongestStreak(dates []string) int {
	days := parseDistinct(dates)
	if len(days) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i], days[i-1]) == 1 {
			run++
			longest = max(longest, run)
		} else {
			run = 1
		}
	}
	return longest
}

// parseDistinct converts the date strings to times at midnight UTC,
// dropping duplicates and anything malformed, sorted ascending.
func parseDistinct(dates []string) []time.Time {
	distinct := lo.Uniq(dates)
	days := make([]time.Time, 0, len(distinct))
	for _, d := range distinct {
		t, err := dateutil.Parse(d)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	slices.SortFunc(days, time.Time.Compare)
	return days
}

// daysBetween returns the calendar-day difference a-b. Both times are at
// midnight UTC, so the division is exact.
func daysBetween(a, b time.Time) int {
	return int(a.Sub(b) / (24 * time.Hour))
}
