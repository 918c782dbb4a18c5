package golf

import (
	"regexp"
	"strconv"
	"strings"

	"golf-caddie/internal/domain"
)

const minDistanceYards = 36

var distancePatterns = compileAll(
	`(\d{2,3})\s*(?:yard|yards|y|yd|yds)\b`,
	`\bat\s+(\d{2,3})\b`,
	`(\d{2,3})\s*(?:yard|yards)\s+(?:par|hole)`,
)

// Checked in order; the first keyword present wins.
var lies = []struct {
	re  *regexp.Regexp
	lie domain.Lie
}{
	{regexp.MustCompile(`\bfairway`), domain.LieFairway},
	{regexp.MustCompile(`\brough`), domain.LieRough},
	{regexp.MustCompile(`\bsand`), domain.LieSand},
	{regexp.MustCompile(`\bbunker`), domain.LieSand},
	{regexp.MustCompile(`\btee\b`), domain.LieTee},
}

var hazards = []struct {
	word string
	re   *regexp.Regexp
	name string
}{
	{"water", regexp.MustCompile(`\bwater`), "water"},
	{"bunker", regexp.MustCompile(`\bbunker`), "front_bunker"},
	{"trees", regexp.MustCompile(`\btrees`), "trees"},
	{"woods", regexp.MustCompile(`\bwoods\b`), "woods"},
	{"pond", regexp.MustCompile(`\bpond`), "pond"},
}

var sandWedgePhrase = regexp.MustCompile(`\bsand[\s-]*wedge\b`)

var wordNumbers = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

const clubWords = `(three|four|five|six|seven|eight|nine)`

type clubRule struct {
	re       *regexp.Regexp
	name     string
	numbered bool
	fallback string
}

var clubRules = []clubRule{
	{re: regexp.MustCompile(`\b(driver|drive)\b`), name: "driver"},
	{re: regexp.MustCompile(`\b(\d+)[\s-]*wood\b`), name: "wood", numbered: true, fallback: "3"},
	{re: regexp.MustCompile(`\b` + clubWords + `[\s-]*wood\b`), name: "wood", numbered: true, fallback: "3"},
	{re: regexp.MustCompile(`\b(\d+)[\s-]*iron\b`), name: "iron", numbered: true, fallback: "7"},
	{re: regexp.MustCompile(`\b` + clubWords + `[\s-]*iron\b`), name: "iron", numbered: true, fallback: "7"},
	{re: regexp.MustCompile(`\b(pitching[\s-]*wedge|pw)\b`), name: "pitching-wedge"},
	{re: regexp.MustCompile(`\b(sand[\s-]*wedge|sw)\b`), name: "sand-wedge"},
	{re: regexp.MustCompile(`\b(lob[\s-]*wedge|lw)\b`), name: "lob-wedge"},
	{re: regexp.MustCompile(`\b(gap[\s-]*wedge|gw)\b`), name: "gap-wedge"},
	{re: regexp.MustCompile(`\bwedge\b`), name: "pitching-wedge"},
	{re: regexp.MustCompile(`\b(putter|putt)\b`), name: "putter"},
}

const handicapWords = `(zero|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty)`

var handicapPatterns = compileAll(
	`\bi'?m\s+a\s+(-?\d{1,2})\s+handicap\b`,
	`\bi'?m\s+a\s+`+handicapWords+`\s+handicap\b`,
	`\bmy\s+handicap\s+is\s+(\d{1,2})\b`,
	`\bmy\s+handicap\s+is\s+`+handicapWords+`\b`,
	`\b(\d{1,2})\s+handicap\s+player\b`,
	`\bhandicap\s+(?:of\s+)?(\d{1,2})\b`,
	`\bhandicap\s+(?:of\s+)?`+handicapWords+`\b`,
	`\bi\s+play\s+to\s+(?:a\s+)?(\d{1,2})\b`,
	`\bi'?m\s+a\s+(\d{1,2})\b`,
	`\bi'?m\s+a\s+`+handicapWords+`\b`,
)

var scratchPattern = regexp.MustCompile(`\bscratch\s+(golfer|player)\b`)

// ParseShot extracts what a golfer said about their shot. handicap is the session value;
// a handicap mentioned in text takes precedence for claim validation. table may be nil.
func ParseShot(text string, handicap *int, table *Statistics) domain.ShotRequest {
	t := strings.ToLower(text)
	req := domain.ShotRequest{
		RawText:           text,
		Kind:              DetectKind(text),
		DistanceYards:     extractDistance(t),
		Club:              extractClub(t),
		HandicapMentioned: ExtractHandicap(t),
	}
	req.Lie, req.Hazards = extractLieAndHazards(t)

	effective := handicap
	if req.HandicapMentioned != nil {
		effective = req.HandicapMentioned
	}
	if table != nil && effective != nil && req.Club != "" && req.DistanceYards != nil {
		if ok, reason := table.ValidateClaim(*effective, req.Club, *req.DistanceYards); !ok {
			req.ValidationWarning = reason
		}
	}
	return req
}

func extractDistance(t string) *int {
	for _, re := range distancePatterns {
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err == nil && v > minDistanceYards {
			return &v
		}
	}
	return nil
}

func extractLieAndHazards(t string) (domain.Lie, []string) {
	lieText := sandWedgePhrase.ReplaceAllString(t, "")
	lie, lieWord := domain.LieFairway, ""
	for _, l := range lies {
		if loc := l.re.FindString(lieText); loc != "" {
			lie, lieWord = l.lie, loc
			break
		}
	}

	var found []string
	for _, hz := range hazards {
		if hz.word == lieWord {
			continue
		}
		if hz.re.MatchString(lieText) {
			found = append(found, hz.name)
		}
	}
	return lie, found
}

func extractClub(t string) string {
	for _, rule := range clubRules {
		m := rule.re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		if !rule.numbered {
			return rule.name
		}
		n := rule.fallback
		if len(m) > 1 {
			if v, ok := wordNumbers[m[1]]; ok {
				n = strconv.Itoa(v)
			} else if _, err := strconv.Atoi(m[1]); err == nil {
				n = m[1]
			}
		}
		return n + "-" + rule.name
	}
	return ""
}

// ExtractHandicap finds a self-reported handicap, clamped to [0, 30].
func ExtractHandicap(text string) *int {
	t := strings.ToLower(text)
	for _, re := range handicapPatterns {
		m := re.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		v, ok := wordNumbers[m[1]]
		if !ok {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			v = n
		}
		v = clamp(v, 0, 30)
		return &v
	}
	if scratchPattern.MatchString(t) {
		return domain.IntPtr(0)
	}
	return nil
}
