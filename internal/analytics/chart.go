package analytics

import (
	"math"

	"github.com/samber/lo"

	"github.com/inkline/writing-service/internal/dateutil"
	"github.com/inkline/writing-service/internal/writing"
)

// Point is one calendar day's aggregate in the chart series. Projects maps
// every visible project name to its word total for the day (0 when the
// project logged nothing); orphaned project names count toward Total but
// get no dedicated entry.
type Point struct {
	Date     string         `json:"date"`
	Total    int            `json:"total"`
	Notes    []string       `json:"notes"`
	Projects map[string]int `json:"projects"`
}

// Chart carries the ordered day series plus Y-axis scaling metadata.
type Chart struct {
	Points     []Point `json:"points"`
	YAxisMax   float64 `json:"y_axis_max"`
	YAxisTicks []int   `json:"y_axis_ticks"`
}

// Window names a trailing time-range selection.
type Window string

const (
	Window1W  Window = "1w"
	Window1M  Window = "1m"
	Window1Y  Window = "1y"
	Window3Y  Window = "3y"
	Window5Y  Window = "5y"
	WindowAll Window = "all"
)

var windowDays = map[Window]int{
	Window1W: 7,
	Window1M: 30,
	Window1Y: 365,
	Window3Y: 365 * 3,
	Window5Y: 365 * 5,
}

// ParseWindow maps a query value to a Window, defaulting to all history.
func ParseWindow(value string) Window {
	w := Window(value)
	if _, ok := windowDays[w]; ok {
		return w
	}
	return WindowAll
}

// FilterRange keeps sessions on or after the window's cutoff date
// (today - days, inclusive). WindowAll keeps everything.
func FilterRange(sessions []writing.Session, window Window, today string) []writing.Session {
	days, bounded := windowDays[window]
	if !bounded {
		return sessions
	}
	cutoff, err := dateutil.AddDays(today, -days)
	if err != nil {
		return sessions
	}
	return lo.Filter(sessions, func(s writing.Session, _ int) bool {
		return s.Date >= cutoff
	})
}

// BuildChart buckets sessions into one Point per calendar day spanning the
// sessions' date extremes, in chronological order. Days with no sessions
// appear with all-zero fields unless hideEmpty suppresses them. The caller
// applies project and time-range selection before calling.
func BuildChart(sessions []writing.Session, projects []writing.Project, hideEmpty bool) Chart {
	sessions = wellFormed(sessions)
	if len(sessions) == 0 {
		return Chart{Points: []Point{}, YAxisMax: defaultAxisMax, YAxisTicks: axisTicks(defaultAxisMax)}
	}

	dates := lo.Map(sessions, func(s writing.Session, _ int) string { return s.Date })
	minDate := lo.Min(dates)
	maxDate := lo.Max(dates)

	byDate := lo.GroupBy(sessions, func(s writing.Session) string { return s.Date })

	points := make([]Point, 0)
	for date := range dateutil.Range(minDate, maxDate) {
		daySessions := byDate[date]
		total := lo.SumBy(daySessions, func(s writing.Session) int { return s.WordCount })

		if hideEmpty && total == 0 {
			continue
		}

		point := Point{
			Date:     date,
			Total:    total,
			Notes:    []string{},
			Projects: make(map[string]int, len(projects)),
		}
		for _, p := range projects {
			point.Projects[p.Name] = 0
		}
		for _, s := range daySessions {
			if _, visible := point.Projects[s.Project]; visible {
				point.Projects[s.Project] += s.WordCount
			}
			if s.Note != "" {
				point.Notes = append(point.Notes, s.Note)
			}
		}
		points = append(points, point)
	}

	rawMax := 0
	for _, p := range points {
		rawMax = max(rawMax, p.Total)
	}
	ceiling := niceMax(rawMax)

	return Chart{Points: points, YAxisMax: ceiling, YAxisTicks: axisTicks(ceiling)}
}

const defaultAxisMax = 100

// niceMax pads the raw maximum by 15% and rounds the result up to the
// nearest step on the {1, 2, 2.5, 5, 7.5, 10} x 10^k ladder. A
// non-positive maximum falls back to a ceiling of 100 so an empty chart
// still has a sensible axis.
func niceMax(rawMax int) float64 {
	if rawMax <= 0 {
		return defaultAxisMax
	}
	padded := float64(rawMax) * 1.15
	magnitude := math.Pow(10, math.Floor(math.Log10(padded)))
	// The pad can land a hair above a step (87 -> 100.05); compare on a
	// rounded fraction so those stay on the lower step.
	fraction := math.Round(padded/magnitude*100) / 100

	var nice float64
	switch {
	case fraction <= 1:
		nice = 1
	case fraction <= 2:
		nice = 2
	case fraction <= 2.5:
		nice = 2.5
	case fraction <= 5:
		nice = 5
	case fraction <= 7.5:
		nice = 7.5
	default:
		nice = 10
	}
	return nice * magnitude
}

// axisTicks produces five evenly spaced tick values from 0 to the ceiling,
// rounded to integers.
func axisTicks(ceiling float64) []int {
	ticks := make([]int, 0, 5)
	for _, fraction := range []float64{0, 0.25, 0.5, 0.75, 1} {
		ticks = append(ticks, int(math.Round(ceiling*fraction)))
	}
	return ticks
}
