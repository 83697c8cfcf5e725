// Package dateutil provides calendar arithmetic on YYYY-MM-DD date strings.
// Dates carry no time-of-day or timezone component; because the format is
// zero-padded, lexicographic comparison of two date strings matches
// chronological order.
package dateutil

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

// ErrInvalidDate indicates a string that is not a valid YYYY-MM-DD date.
var ErrInvalidDate = errors.New("invalid date")

// Format renders a time as a calendar date string.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Today returns the current local calendar date.
func Today() string {
	return Format(time.Now())
}

// Parse converts a date string to a time at midnight UTC. Malformed or
// impossible dates (e.g. 2024-02-31) fail with ErrInvalidDate.
func Parse(date string) (time.Time, error) {
	t, err := time.Parse(Layout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// IsValid reports whether the string is a well-formed calendar date.
func IsValid(date string) bool {
	_, err := Parse(date)
	return err == nil
}

// AddDays shifts a date by n days (n may be negative), wrapping months and
// years.
func AddDays(date string, n int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// DiffDays returns the number of calendar days a-b, positive when a is later.
func DiffDays(a, b string) (int, error) {
	ta, err := Parse(a)
	if err != nil {
		return 0, err
	}
	tb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return int(ta.Sub(tb) / (24 * time.Hour)), nil
}

// Range yields every date from start to end inclusive, in chronological
// order. The sequence is lazy and restartable. It is empty when start is
// after end or either bound is malformed.
func Range(start, end string) iter.Seq[string] {
	return func(yield func(string) bool) {
		cur, err := Parse(start)
		if err != nil {
			return
		}
		last, err := Parse(end)
		if err != nil {
			return
		}
		for !cur.After(last) {
			if !yield(Format(cur)) {
				return
			}
			cur = cur.AddDate(0, 0, 1)
		}
	}
}
