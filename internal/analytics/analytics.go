package analytics

import (
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/inkline/writing-service/internal/dateutil"
	"github.com/inkline/writing-service/internal/writing"
)

// Direction indicates how this week's output compares to last week's.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionNone Direction = "none"
)

// BestDay is the calendar day with the highest summed word total.
type BestDay struct {
	Date  string `json:"date"`
	Words int    `json:"words"`
}

// WeekComparison sums this week's words (Monday through the reference day,
// inclusive) against last week's full Monday-to-Sunday span.
type WeekComparison struct {
	Words     int       `json:"words"`
	Diff      int       `json:"diff"`
	Direction Direction `json:"direction"`
}

// Summary is the derived analytics view of a session collection at a point
// in time. It is never persisted; callers recompute it from the full
// snapshot whenever inputs change.
type Summary struct {
	TotalWords    int            `json:"total_words"`
	WritingDays   int            `json:"writing_days"`
	DailyAverage  int            `json:"daily_average"`
	CurrentStreak int            `json:"current_streak"`
	LongestStreak int            `json:"longest_streak"`
	BestDay       *BestDay       `json:"best_day,omitempty"`
	ThisWeek      WeekComparison `json:"this_week"`
}

// Compute aggregates the sessions into a Summary. The caller is expected
// to have applied any project or time-range selection already, and to pass
// the reference date ("today") from its clock so the result is a pure
// function of the arguments.
//
// When includeEmptyDays is set, the daily average divides by every
// calendar day between the first and last session inclusive; otherwise it
// divides by the number of distinct writing days. Records that violate the
// store's invariants (bad date, non-positive count) are excluded rather
// than corrupting the output.
func Compute(sessions []writing.Session, includeEmptyDays bool, today string) Summary {
	sessions = wellFormed(sessions)
	if len(sessions) == 0 {
		return Summary{ThisWeek: WeekComparison{Direction: DirectionNone}}
	}

	totalWords := lo.SumBy(sessions, func(s writing.Session) int { return s.WordCount })

	dates := lo.Map(sessions, func(s writing.Session, _ int) string { return s.Date })
	writingDays := len(lo.Uniq(dates))

	dailyAverage := roundedAverage(totalWords, writingDays)
	if includeEmptyDays {
		first := lo.Min(dates)
		last := lo.Max(dates)
		if span, err := dateutil.DiffDays(last, first); err == nil {
			dailyAverage = roundedAverage(totalWords, span+1)
		}
	}

	return Summary{
		TotalWords:    totalWords,
		WritingDays:   writingDays,
		DailyAverage:  dailyAverage,
		CurrentStreak: CurrentStreak(dates, today),
		LongestStreak: LongestStreak(dates),
		BestDay:       bestDay(sessions),
		ThisWeek:      weekComparison(sessions, today),
	}
}

// wellFormed drops records a validating store should never have produced.
func wellFormed(sessions []writing.Session) []writing.Session {
	return lo.Filter(sessions, func(s writing.Session, _ int) bool {
		return s.WordCount > 0 && dateutil.IsValid(s.Date)
	})
}

// roundedAverage rounds half away from zero.
func roundedAverage(total, days int) int {
	if days <= 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(days)))
}

// bestDay finds the date with the highest same-day word total. Ties are
// broken by whichever date was encountered first in input order, which is
// deterministic given the repository's stable ordering contract.
func bestDay(sessions []writing.Session) *BestDay {
	totals := make(map[string]int, len(sessions))
	order := make([]string, 0, len(sessions))
	for _, s := range sessions {
		if _, seen := totals[s.Date]; !seen {
			order = append(order, s.Date)
		}
		totals[s.Date] += s.WordCount
	}

	var best *BestDay
	for _, date := range order {
		if best == nil || totals[date] > best.Words {
			best = &BestDay{Date: date, Words: totals[date]}
		}
	}
	return best
}

// weekComparison computes this-week and last-week word totals. Weeks start
// on Monday; Sunday counts as the sixth day after the prior Monday.
func weekComparison(sessions []writing.Session, today string) WeekComparison {
	ref, err := dateutil.Parse(today)
	if err != nil {
		return WeekComparison{Direction: DirectionNone}
	}

	mondayOffset := 1 - int(ref.Weekday())
	if ref.Weekday() == time.Sunday {
		mondayOffset = -6
	}
	thisWeekStart := dateutil.Format(ref.AddDate(0, 0, mondayOffset))
	lastWeekStart := dateutil.Format(ref.AddDate(0, 0, mondayOffset-7))

	thisWeek, lastWeek := 0, 0
	for _, s := range sessions {
		switch {
		case s.Date >= thisWeekStart && s.Date <= today:
			thisWeek += s.WordCount
		case s.Date >= lastWeekStart && s.Date < thisWeekStart:
			lastWeek += s.WordCount
		}
	}

	diff := thisWeek - lastWeek
	direction := DirectionNone
	if diff > 0 {
		direction = DirectionUp
	} else if diff < 0 {
		direction = DirectionDown
	}

	return WeekComparison{
		Words:     thisWeek,
		Diff:      abs(diff),
		Direction: direction,
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
