package writing

import (
	"strings"
	"testing"
)

func TestSanitizeStripsMarkupAndScripts(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  plain text  ", "plain text"},
		{"<script>alert(1)</script>", "scriptalert(1)/script"},
		{"click javascript:alert(1)", "click alert(1)"},
		{"JaVaScRiPt:payload", "payload"},
		{`img onerror=steal()`, "img steal()"},
		{"draft <chapter 3>", "draft chapter 3"},
	}
	for _, tc := range cases {
		if got := Sanitize(tc.in); got != tc.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeNoteCapsLength(t *testing.T) {
	long := strings.Repeat("a", MaxNoteLen+500)
	got := SanitizeNote(long)
	if len([]rune(got)) != MaxNoteLen {
		t.Fatalf("expected note capped at %d runes, got %d", MaxNoteLen, len([]rune(got)))
	}
}

func TestValidWordCount(t *testing.T) {
	for count, want := range map[int]bool{
		1:                true,
		50_000:           true,
		MaxWordCount:     true,
		0:                false,
		-10:              false,
		MaxWordCount + 1: false,
	} {
		if got := ValidWordCount(count); got != want {
			t.Fatalf("ValidWordCount(%d) = %v, want %v", count, got, want)
		}
	}
}

func TestValidProjectName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"The Novel", true},
		{"été ✍️", true},
		{"", false},
		{strings.Repeat("x", MaxProjectNameLen), true},
		{strings.Repeat("x", MaxProjectNameLen+1), false},
		{"tab\there", false},
		{"sneaky‮reversed", false},
		{"isolate⁦name", false},
	}
	for _, tc := range cases {
		if got := ValidProjectName(tc.name); got != tc.want {
			t.Fatalf("ValidProjectName(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
