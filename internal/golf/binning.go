package golf

import (
	"fmt"
	"math"
)

// ContextBins are coarse labels describing a shot situation, used to group similar shots.
type ContextBins struct {
	DistanceBin            int
	WindBin                string
	HandicapBin            string
	PerformanceExpectation string
}

func BinDistance(yards, size int) (int, error) {
	if size <= 0 {
		return 0, fmt.Errorf("bin size must be positive, got %d", size)
	}
	if yards < 0 {
		yards = 0
	}
	return yards / size * size, nil
}

// BinWind labels wind components in 2 m/s steps, e.g. "head_2|cross_2L".
func BinWind(head, cross float64) string {
	headDir := "head"
	if head < 0 {
		headDir = "tail"
	}
	crossDir := "0"
	switch {
	case cross > 0:
		crossDir = "R"
	case cross < 0:
		crossDir = "L"
	}
	return fmt.Sprintf("%s_%d|cross_%d%s", headDir, bucket2(head), bucket2(cross), crossDir)
}

func bucket2(v float64) int {
	return int(math.Floor(math.Abs(v)/2) * 2)
}

func BinHandicap(h int) string {
	switch {
	case h <= 0:
		return "scratch"
	case h <= 5:
		return "low_single"
	case h <= 9:
		return "high_single"
	case h <= 15:
		return "low_double"
	case h <= 20:
		return "high_double"
	default:
		return "high_handicap"
	}
}

// PerformanceExpectation labels what a golfer usually does from a distance,
// e.g. "med_gir_45pct_58ft". Returns "unknown" without statistics.
func PerformanceExpectation(table *Statistics, distance, handicap int) string {
	if _, ok := table.Stats(handicap); !ok {
		return "unknown"
	}
	gir := table.GIRPercentage(handicap, distance)
	prox := table.ExpectedProximity(handicap, distance)
	level := "low"
	switch {
	case gir >= 50:
		level = "high"
	case gir >= 25:
		level = "med"
	}
	return fmt.Sprintf("%s_gir_%dpct_%dft", level, gir, prox)
}

func ComputeContextBins(distance int, head, cross float64, handicap *int, binSize int, table *Statistics) (ContextBins, error) {
	d, err := BinDistance(distance, binSize)
	if err != nil {
		return ContextBins{}, err
	}
	bins := ContextBins{
		DistanceBin:            d,
		WindBin:                BinWind(head, cross),
		HandicapBin:            "unknown",
		PerformanceExpectation: "unknown",
	}
	if handicap != nil {
		bins.HandicapBin = BinHandicap(*handicap)
		bins.PerformanceExpectation = PerformanceExpectation(table, distance, *handicap)
	}
	return bins, nil
}

func (b ContextBins) String() string {
	return fmt.Sprintf("distance=%dy wind=%s handicap=%s expectation=%s",
		b.DistanceBin, b.WindBin, b.HandicapBin, b.PerformanceExpectation)
}
