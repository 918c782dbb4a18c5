package golf

import (
	"fmt"
	"math"
	"strings"

	"golf-caddie/internal/domain"
)

const (
	msToMPH       = 2.23694
	windThreshold = 0.5
)

// WindComponents splits a wind blowing from fromDeg into components along a shot bearing.
// Headwind is positive against the ball flight; crosswind is positive right-to-left.
func WindComponents(speedMS float64, fromDeg, bearingDeg int) (head, cross float64) {
	to := mod360(fromDeg + 180)
	theta := float64(mod360(to-bearingDeg)) * math.Pi / 180
	if theta > math.Pi {
		theta -= 2 * math.Pi
	}
	head = -speedMS * math.Cos(theta)
	cross = -speedMS * math.Sin(theta)
	return head, cross
}

func SummarizeWind(speedMS, head, cross float64) string {
	parts := []string{fmt.Sprintf("%.0f mph", speedMS*msToMPH)}
	switch {
	case math.Abs(head) < windThreshold:
		parts = append(parts, "neutral wind")
	case head > 0:
		parts = append(parts, "headwind")
	default:
		parts = append(parts, "tailwind")
	}
	if math.Abs(cross) >= windThreshold {
		if cross > 0 {
			parts = append(parts, "right-to-left")
		} else {
			parts = append(parts, "left-to-right")
		}
	}
	return strings.Join(parts, ", ")
}

// ResolveWind applies a shot bearing to a raw reading.
func ResolveWind(r domain.WindReading, bearingDeg int) domain.Wind {
	head, cross := WindComponents(r.SpeedMS, r.DirectionDeg, bearingDeg)
	return domain.Wind{
		SpeedMS:      r.SpeedMS,
		DirectionDeg: r.DirectionDeg,
		HeadwindMS:   head,
		CrosswindMS:  cross,
		Summary:      SummarizeWind(r.SpeedMS, head, cross),
		Stale:        r.Stale,
	}
}

func mod360(d int) int {
	return ((d % 360) + 360) % 360
}
