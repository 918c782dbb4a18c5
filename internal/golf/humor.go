package golf

import (
	"fmt"
	"math"
	"strings"

	"golf-caddie/internal/domain"
)

// DefaultHandicap is assumed for fallback advice when the golfer never said theirs.
const DefaultHandicap = 20

type HumorContext struct {
	Handicap        int
	DistanceYards   int
	Lie             domain.Lie
	Hazards         []string
	RecommendedClub string
	ShotType        string
	// AimOffsetYards is positive to the right.
	AimOffsetYards int
	Confidence     float64
	GoToHint       string
}

var longClubs = map[string]bool{
	"driver": true, "3-wood": true, "5-wood": true, "3-iron": true, "4-iron": true, "5-iron": true,
}

func ambition(c HumorContext) string {
	switch {
	case c.Handicap >= 20 && longClubs[c.RecommendedClub] && c.DistanceYards >= 180:
		return "high"
	case c.Handicap >= 15 && c.DistanceYards >= 170:
		return "medium"
	default:
		return "low"
	}
}

// Quip turns a recommendation into the caddie's spoken line.
func Quip(c HumorContext) string {
	var opener string
	switch ambition(c) {
	case "high":
		opener = "Ambitious. I respect the confidence, and I respect the water hazard more."
	case "medium":
		opener = "Bold choice. Let's give it a smart target and keep the story short."
	default:
		opener = "Sensible play. Boring golf is underrated, and it tends to score lower."
	}

	rationale := fmt.Sprintf("%s with a %s", c.RecommendedClub, c.ShotType)
	if c.AimOffsetYards != 0 {
		side := "right"
		if c.AimOffsetYards < 0 {
			side = "left"
		}
		rationale += fmt.Sprintf(", aim %d yards %s", absInt(c.AimOffsetYards), side)
	}
	rationale += "."
	if c.GoToHint != "" {
		rationale += " This matches your go-to: " + c.GoToHint + "."
	}
	if len(c.Hazards) > 0 {
		rationale += " Eyes up for " + strings.Join(c.Hazards, ", ") + "."
	}

	var signOff string
	switch {
	case c.Confidence >= 0.75:
		signOff = "Green light. Commit and swing smooth."
	case c.Confidence >= 0.5:
		signOff = "Looks good. Tempo first, heroics second."
	default:
		signOff = "Play the percentages and we'll be telling a happier story."
	}
	return opener + " " + rationale + " " + signOff
}

// FallbackAdvice builds a rule-based recommendation when no recommender answered.
// wind and table may be nil.
func FallbackAdvice(shot domain.ShotRequest, handicap *int, wind *domain.Wind, table *Statistics) domain.Recommendation {
	if shot.DistanceYards == nil {
		text := "Give me a yardage and I'll pick the club."
		if handicap == nil && shot.HandicapMentioned == nil {
			text += " And what's your handicap?"
		}
		return domain.Recommendation{Text: text, Provider: "rules", Fallback: true}
	}

	h := DefaultHandicap
	if shot.HandicapMentioned != nil {
		h = *shot.HandicapMentioned
	} else if handicap != nil {
		h = *handicap
	}
	distance := *shot.DistanceYards

	var head, cross float64
	if wind != nil {
		head, cross = wind.HeadwindMS, wind.CrosswindMS
	}

	c := HumorContext{
		Handicap:        h,
		DistanceYards:   distance,
		Lie:             shot.Lie,
		Hazards:         shot.Hazards,
		RecommendedClub: table.ClubFor(h, PlaysLike(distance, head, shot.Lie)),
		ShotType:        shotType(shot.Lie, head),
		AimOffsetYards:  AimOffset(distance, cross),
		Confidence:      confidence(table.GIRPercentage(h, distance), shot.Hazards, cross),
	}
	return domain.Recommendation{Text: Quip(c), Provider: "rules", Fallback: true}
}

// PlaysLike adjusts a yardage for wind and lie: +1% per mph into the wind, -0.5% per mph
// downwind, +5% from the rough.
func PlaysLike(distance int, headMS float64, lie domain.Lie) int {
	mph := headMS * msToMPH
	factor := 1.0
	if mph > 0 {
		factor += 0.01 * mph
	} else {
		factor += 0.005 * mph
	}
	if lie == domain.LieRough {
		factor += 0.05
	}
	return int(math.Round(float64(distance) * factor))
}

// AimOffset is how far to aim into a crosswind; a right-to-left wind means aim right.
func AimOffset(distance int, crossMS float64) int {
	return int(math.Round(crossMS * msToMPH * float64(distance) / 200))
}

func shotType(lie domain.Lie, headMS float64) string {
	switch {
	case lie == domain.LieSand:
		return "splash"
	case lie == domain.LieRough:
		return "punch"
	case headMS >= 4:
		return "knockdown"
	default:
		return "normal swing"
	}
}

func confidence(gir int, hazards []string, crossMS float64) float64 {
	c := 0.5 + float64(gir)/200
	c -= 0.1 * float64(len(hazards))
	if math.Abs(crossMS) >= 4 {
		c -= 0.1
	}
	return math.Max(0.1, math.Min(0.95, c))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
