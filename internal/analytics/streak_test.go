package analytics

import "testing"

// 2024-06-19 is a Wednesday.
const refDate = "2024-06-19"

func TestCurrentStreakEmptyInput(t *testing.T) {
	if got := CurrentStreak(nil, refDate); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestCurrentStreakEndingToday(t *testing.T) {
	dates := []string{"2024-06-19", "2024-06-18", "2024-06-17"}
	if got := CurrentStreak(dates, refDate); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestCurrentStreakAllowsYesterdayGrace(t *testing.T) {
	dates := []string{"2024-06-18", "2024-06-17"}
	if got := CurrentStreak(dates, refDate); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestCurrentStreakBrokenByTwoDayGap(t *testing.T) {
	dates := []string{"2024-06-17", "2024-06-16"}
	if got := CurrentStreak(dates, refDate); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestCurrentStreakStopsAtFirstGap(t *testing.T) {
	dates := []string{"2024-06-19", "2024-06-18", "2024-06-16", "2024-06-15"}
	if got := CurrentStreak(dates, refDate); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestCurrentStreakDuplicatesCountOnce(t *testing.T) {
	dates := []string{"2024-06-19", "2024-06-19", "2024-06-19"}
	if got := CurrentStreak(dates, refDate); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestLongestStreakEmptyInput(t *testing.T) {
	if got := LongestStreak(nil); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestLongestStreakFindsLaterRun(t *testing.T) {
	// D, D+1, then D+3..D+5: the later run of three wins.
	dates := []string{"2024-03-01", "2024-03-02", "2024-03-04", "2024-03-05", "2024-03-06"}
	if got := LongestStreak(dates); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestLongestStreakSingleDate(t *testing.T) {
	if got := LongestStreak([]string{"2024-03-01"}); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestLongestStreakSpansMonthBoundary(t *testing.T) {
	dates := []string{"2024-02-28", "2024-02-29", "2024-03-01"}
	if got := LongestStreak(dates); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestLongestStreakNeverBelowCurrent(t *testing.T) {
	sets := [][]string{
		{"2024-06-19", "2024-06-18", "2024-06-17"},
		{"2024-06-18"},
		{"2024-06-10", "2024-06-11", "2024-06-18", "2024-06-19"},
		{"2024-06-01", "2024-06-19"},
	}
	for _, dates := range sets {
		current := CurrentStreak(dates, refDate)
		longest := LongestStreak(dates)
		if longest < current {
			t.Fatalf("dates %v: longest %d < current %d", dates, longest, current)
		}
	}
}
