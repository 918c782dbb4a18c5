package golf

import (
	"regexp"
	"strings"
)

const MaxLayoutChars = 240

var (
	courseAnchors = compileAll(`\bfirst tee of\s+(.+)`, `\bat\s+(.+)`, `\s+of\s+(.+)`)
	courseCut     = regexp.MustCompile(`(?i)\b(?:please|give me|weather|report|conditions|what are|today|now|current)\b`)
	holeNumber    = regexp.MustCompile(`\bhole\s+\d+\b`)
)

var courseMentions = []string{"first tee", "clubhouse", "course"}

var layoutClears = []string{"next hole", "new hole", "on the next", "moved to"}

var layoutKeywords = []string{
	"bunker", "trees", "water", "dogleg", "narrow", "wide", "elevated", "downhill", "uphill",
}

// ExtractCourseName pulls a geocodable place name out of an utterance like
// "I'm on the first tee of Finchley Golf Club, what's the weather".
func ExtractCourseName(text string) string {
	candidate := text
	lower := strings.ToLower(text)
	for _, re := range courseAnchors {
		loc := re.FindStringSubmatchIndex(lower)
		if loc != nil && len(lower) == len(text) {
			candidate = text[loc[2]:]
			break
		}
	}
	if loc := courseCut.FindStringIndex(candidate); loc != nil {
		candidate = candidate[:loc[0]]
	}
	return strings.Trim(candidate, " .,!?")
}

func MentionsCourse(text string) bool {
	t := strings.ToLower(text)
	for _, kw := range courseMentions {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return holeNumber.MatchString(t)
}

// ClearsLayout reports whether the golfer moved on and remembered hole layout should be dropped.
func ClearsLayout(text string) bool {
	t := strings.ToLower(text)
	for _, kw := range layoutClears {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return holeNumber.MatchString(t)
}

func DescribesLayout(text string) bool {
	t := strings.ToLower(text)
	for _, kw := range layoutKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// LayoutNote truncates a layout description to what session memory keeps.
func LayoutNote(text string) string {
	return Truncate(strings.TrimSpace(text), MaxLayoutChars)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
