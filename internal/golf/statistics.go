package golf

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

//go:embed statistics.json
var defaultStatistics []byte

// Clubs ordered shortest to longest carry.
var clubOrder = []string{
	"lob_wedge", "sand_wedge", "pitching_wedge", "9_iron", "8_iron", "7_iron",
	"6_iron", "5_iron", "4_iron", "3_iron", "5_wood", "3_wood", "driver",
}

type Stats struct {
	Category         string             `json:"category"`
	ClubDistances    map[string]int     `json:"club_distances"`
	Proximity        map[string]int     `json:"proximity_to_target"`
	GIR              map[string]int     `json:"greens_in_regulation"`
	ShortGame        map[string]int     `json:"short_game"`
	Putting          map[string]float64 `json:"putting"`
	CourseManagement map[string]float64 `json:"course_management"`
}

// Statistics is a per-handicap table of typical amateur performance.
type Statistics struct {
	rows      map[int]Stats
	handicaps []int
}

type statisticsFile struct {
	HandicapStatistics map[string]Stats `json:"handicap_statistics"`
}

func DefaultStatistics() *Statistics {
	s, err := ParseStatistics(defaultStatistics)
	if err != nil {
		panic(fmt.Sprintf("embedded statistics: %v", err))
	}
	return s
}

// LoadStatistics reads a table from path, or returns the embedded table when path is empty.
func LoadStatistics(path string) (*Statistics, error) {
	if path == "" {
		return DefaultStatistics(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statistics: %w", err)
	}
	return ParseStatistics(data)
}

func ParseStatistics(data []byte) (*Statistics, error) {
	var f statisticsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing statistics: %w", err)
	}
	if len(f.HandicapStatistics) == 0 {
		return nil, fmt.Errorf("statistics table has no handicap rows")
	}

	s := &Statistics{rows: make(map[int]Stats, len(f.HandicapStatistics))}
	for k, row := range f.HandicapStatistics {
		h, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("statistics row %q: handicap must be an integer", k)
		}
		s.rows[h] = row
		s.handicaps = append(s.handicaps, h)
	}
	sort.Ints(s.handicaps)
	return s, nil
}

// Stats returns the row for handicap h clamped to [0, 20]. Handicaps between table rows use the
// nearest row at or below.
func (s *Statistics) Stats(h int) (Stats, bool) {
	if s == nil || len(s.handicaps) == 0 {
		return Stats{}, false
	}
	h = clamp(h, 0, 20)
	best := s.handicaps[0]
	for _, rh := range s.handicaps {
		if rh <= h {
			best = rh
		}
	}
	return s.rows[best], true
}

// ExpectedDistance returns the typical carry for a club written like "7-iron" or "pitching-wedge".
func (s *Statistics) ExpectedDistance(h int, club string) (int, bool) {
	st, ok := s.Stats(h)
	if !ok {
		return 0, false
	}
	d, ok := st.ClubDistances[clubKey(club)]
	return d, ok
}

// ClubFor picks the shortest club that carries the target, or the longest club when nothing does.
func (s *Statistics) ClubFor(h, target int) string {
	st, ok := s.Stats(h)
	if !ok {
		return "7-iron"
	}
	longest := ""
	for _, key := range clubOrder {
		d, ok := st.ClubDistances[key]
		if !ok {
			continue
		}
		longest = key
		if d >= target {
			return clubName(key)
		}
	}
	if longest == "" {
		return "7-iron"
	}
	return clubName(longest)
}

func (s *Statistics) ExpectedProximity(h, distance int) int {
	st, ok := s.Stats(h)
	if !ok {
		return 0
	}
	var key string
	switch {
	case distance <= 50:
		key = "50_yards"
	case distance <= 75:
		key = "75_yards"
	case distance <= 100:
		key = "100_yards"
	case distance <= 125:
		key = "125_yards"
	case distance <= 150:
		key = "150_yards"
	case distance <= 175:
		key = "175_yards"
	default:
		key = "200_yards"
	}
	return st.Proximity[key]
}

func (s *Statistics) GIRPercentage(h, distance int) int {
	st, ok := s.Stats(h)
	if !ok {
		return 0
	}
	var key string
	switch {
	case distance <= 125:
		key = "100_125_yards"
	case distance <= 150:
		key = "125_150_yards"
	case distance <= 175:
		key = "150_175_yards"
	case distance <= 200:
		key = "175_200_yards"
	default:
		key = "200_plus_yards"
	}
	return st.GIR[key]
}

// ValidateClaim reports whether a claimed carry is within 20% of the table's typical distance.
func (s *Statistics) ValidateClaim(h int, club string, claimed int) (bool, string) {
	expected, ok := s.ExpectedDistance(h, club)
	if !ok || expected == 0 {
		return true, "Unknown club"
	}
	ratio := float64(claimed) / float64(expected)
	switch {
	case ratio < 0.8:
		return false, fmt.Sprintf("Unusually short (expected ~%dy)", expected)
	case ratio > 1.2:
		return false, fmt.Sprintf("Unusually long (expected ~%dy)", expected)
	}
	return true, "Realistic"
}

// PerformanceContext is a one-line summary of what a golfer of handicap h does from distance.
func (s *Statistics) PerformanceContext(h, distance int) string {
	st, ok := s.Stats(h)
	if !ok {
		return fmt.Sprintf("Handicap %d player", h)
	}
	return fmt.Sprintf("Handicap %d (%s) | Typical %s for %dy | Expected proximity: %dft | GIR rate: %d%%",
		h, st.Category, s.ClubFor(h, distance), distance,
		s.ExpectedProximity(h, distance), s.GIRPercentage(h, distance))
}

// KeyClubs lists driver, 7-iron and pitching wedge carries for the prompt.
func (st Stats) KeyClubs() string {
	return fmt.Sprintf("Driver %dy, 7-iron %dy, PW %dy",
		st.ClubDistances["driver"], st.ClubDistances["7_iron"], st.ClubDistances["pitching_wedge"])
}

func clubKey(club string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(club)), "-", "_")
}

func clubName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
