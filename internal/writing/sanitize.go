package writing

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxWordCount bounds a single session's word count.
	MaxWordCount = 1_000_000
	// MaxNoteLen caps a note's length in runes after sanitization.
	MaxNoteLen = 2000
	// MaxProjectNameLen caps a project name's length in runes.
	MaxProjectNameLen = 100
)

var (
	jsProtocolPattern = regexp.MustCompile(`(?i)javascript:`)
	eventAttrPattern  = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// Sanitize strips markup-significant characters and script-injection
// patterns from free text and trims surrounding whitespace.
func Sanitize(input string) string {
	s := strings.NewReplacer("<", "", ">", "").Replace(input)
	s = jsProtocolPattern.ReplaceAllString(s, "")
	s = eventAttrPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SanitizeNote sanitizes a note and enforces the length cap.
func SanitizeNote(input string) string {
	s := Sanitize(input)
	runes := []rune(s)
	if len(runes) > MaxNoteLen {
		return string(runes[:MaxNoteLen])
	}
	return s
}

// ValidWordCount reports whether the count is a positive integer within
// bounds.
func ValidWordCount(count int) bool {
	return count > 0 && count <= MaxWordCount
}

// ValidProjectName reports whether the (already sanitized) name is
// non-empty, within the length cap, and free of control characters and
// bidirectional-override codepoints.
func ValidProjectName(name string) bool {
	runes := []rune(name)
	if len(runes) == 0 || len(runes) > MaxProjectNameLen {
		return false
	}
	for _, r := range runes {
		if unicode.IsControl(r) || isBidiOverride(r) {
			return false
		}
	}
	return true
}

// isBidiOverride matches the explicit directional formatting codepoints
// (LRE..RLO and LRI..PDI) that can visually reorder surrounding text.
func isBidiOverride(r rune) bool {
	return (r >= '‪' && r <= '‮') || (r >= '⁦' && r <= '⁩')
}
