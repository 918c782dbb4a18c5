package golf

import (
	"regexp"
	"strings"

	"golf-caddie/internal/domain"
)

var shotKeywords = []string{
	"what club", "which club", "recommend", "suggest", "should i",
	"what should i play", "how should i play", "should i hit",
	"hit", "aim", "carry", "lay up", "club do i use", "use a",
}

var weatherPatterns = compileAll(
	`\bwhat('s| is)?\b.*\b(wind|weather|conditions|forecast)\b`,
	`\bhow\b.*\b(windy|wind)\b`,
	`\bcurrent\b.*\b(conditions|wind|weather)\b`,
	`\bforecast\b`,
	`\btell me\b.*\b(conditions|weather|wind)\b`,
	`\bcan you tell me\b.*\b(conditions|weather|wind)\b`,
	`\bwhat are\b.*\b(conditions|weather|wind)\b`,
	`\bcheck\b.*\b(conditions|weather|wind)\b`,
	`\b(conditions|weather|wind)\b.*\b(today|now|current)\b`,
	`\b(today|now)\b.*\b(conditions|weather|wind)\b`,
	`\b(weather|wind|conditions)\s+(report|update|check)\b`,
)

// DetectKind classifies an utterance. Shot keywords win over weather phrasing, so
// "what's the wind, what club should I hit" is a shot request.
func DetectKind(text string) domain.RequestKind {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, kw := range shotKeywords {
		if strings.Contains(t, kw) {
			return domain.RequestShot
		}
	}
	for _, re := range weatherPatterns {
		if re.MatchString(t) {
			return domain.RequestWeather
		}
	}
	return domain.RequestShot
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
