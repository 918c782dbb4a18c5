package application

import (
	"fmt"
	"regexp"
	"strings"

	"golf-caddie/internal/domain"
	"golf-caddie/internal/golf"
)

const (
	promptHistory      = 3
	promptHistoryChars = 140
)

var mishit = regexp.MustCompile(`(?i)\b(shank|slice|hook|chunk|duff|top|water|out of bounds|ob\b)`)

type PromptInput struct {
	Transcript  string
	Shot        domain.ShotRequest
	Handicap    *int
	Coordinates domain.Coordinates
	BearingDeg  int
	History     []domain.Exchange
	Conditions  string
	Layout      string
	Bins        *golf.ContextBins
	Table       *golf.Statistics
}

// BuildPrompt renders the recommendation request. Only the last few exchanges
// are included, each side truncated.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("You are a COURSE MANAGEMENT focused golf caddie. Your primary role is helping players " +
		"make smart, conservative decisions that minimize big numbers and play to their strengths.\n")

	roast := false
	if len(in.History) > 0 {
		recent := in.History
		if len(recent) > promptHistory {
			recent = recent[len(recent)-promptHistory:]
		}
		b.WriteString("Recent shots (use for context, but don't repeat):\n")
		for i, ex := range recent {
			fmt.Fprintf(&b, "- Shot %d: user='%s', caddie='%s'\n", i+1, golf.Truncate(ex.Said, promptHistoryChars), golf.Truncate(ex.Reply, promptHistoryChars))
		}
		b.WriteString("\n")
		roast = mishit.MatchString(in.History[len(in.History)-1].Said)
	}

	if in.Handicap == nil {
		b.WriteString("IMPORTANT: No handicap provided. Ask the user for their handicap or skill level " +
			"to give proper course management advice. Say something like: " +
			"'What's your handicap? I need to know your skill level to recommend the right shot strategy.'\n\n")
	}

	b.WriteString("COURSE MANAGEMENT PHILOSOPHY:\n" +
		"Golf is about hitting the LEAST WORST shot, not the perfect shot. Course management " +
		"trumps raw skill. Your job is to help players avoid disaster and play within their abilities.\n\n" +
		"Task: Recommend the SMARTEST shot for this player's skill level, not the most aggressive.\n" +
		"CORE PRINCIPLES:\n" +
		"- SAFETY FIRST: Avoid hazards, pick conservative targets, leave room for error\n" +
		"- PLAY YOUR DISTANCES: Use the performance data to recommend realistic expectations\n" +
		"- PERCENTAGES MATTER: Focus on high-percentage shots that this handicap can execute\n" +
		"- LEAVE YOURSELF OPTIONS: Consider where a miss will end up\n" +
		"- SHORT SIDE IS DEATH: Avoid short-sided positions around greens\n" +
		"- WHEN IN DOUBT, TAKE MORE CLUB and aim for center of target\n")
	if roast {
		b.WriteString("- If the previous shot mentions a mishit (shank/slice/hook/chunk/top/water/OB), " +
			"add a playful one-line roast acknowledging it.\n")
	}
	b.WriteString("Response Format:\n" +
		"1) Smart club choice + target + course management reason\n" +
		"2) One witty comment about playing percentages or avoiding trouble\n\n")

	if in.Conditions != "" {
		fmt.Fprintf(&b, "Current conditions: %s\n", in.Conditions)
	}
	if in.Layout != "" {
		fmt.Fprintf(&b, "Hole layout: %s\n", in.Layout)
	}
	if in.Handicap != nil {
		b.WriteString(statisticsBlock(in.Shot, *in.Handicap, in.Table))
	}
	if in.Bins != nil {
		fmt.Fprintf(&b, "Shot context: %s\n", in.Bins)
	}

	fmt.Fprintf(&b, "Transcript: %s\n", in.Transcript)
	if in.Handicap == nil {
		b.WriteString("Handicap: Unknown - ASK FOR IT!\n")
	} else {
		fmt.Fprintf(&b, "Handicap: %d\n", *in.Handicap)
	}
	fmt.Fprintf(&b, "Location: lat=%g, lon=%g, bearing=%d\n", in.Coordinates.Lat, in.Coordinates.Lon, in.BearingDeg)
	return b.String()
}

func statisticsBlock(shot domain.ShotRequest, handicap int, table *golf.Statistics) string {
	st, ok := table.Stats(handicap)
	if !ok {
		return fmt.Sprintf("Handicap %d player\n\n", handicap)
	}

	parts := []string{fmt.Sprintf("PLAYER SKILL PROFILE: %s golfer (handicap %d)", st.Category, handicap)}
	if shot.ValidationWarning != "" {
		parts = append(parts, "REALITY CHECK: "+shot.ValidationWarning)
	}
	if shot.DistanceYards != nil {
		d := *shot.DistanceYards
		parts = append(parts,
			fmt.Sprintf("RECOMMENDED CLUB for %dy: %s", d, table.ClubFor(handicap, d)),
			fmt.Sprintf("REALISTIC EXPECTATION: %dft from pin (typical for this handicap)", table.ExpectedProximity(handicap, d)),
			fmt.Sprintf("SUCCESS RATE: %d%% chance of hitting green from %dy", table.GIRPercentage(handicap, d), d),
		)
	}
	parts = append(parts,
		"STRENGTHS TO PLAY TO:",
		fmt.Sprintf("- Overall GIR: %d%% (play to your average)", st.GIR["overall"]),
		fmt.Sprintf("- Fairways hit: %.0f%% (prioritize fairways over distance)", st.CourseManagement["fairways_hit"]),
		fmt.Sprintf("- Scrambling: %d%% (short game bailout ability)", st.ShortGame["scrambling_percentage"]),
		fmt.Sprintf("- 3-putt rate: %.1f/round (putting pressure tolerance)", st.Putting["three_putts_per_round"]),
		"DISTANCE REALITY CHECK:",
		"- "+st.KeyClubs(),
		"- These are TYPICAL distances - recommend taking MORE club in pressure situations",
		"- Factor in adrenaline, wind, pin position when choosing",
	)

	var b strings.Builder
	b.WriteString("COURSE MANAGEMENT DATA:\n")
	for _, p := range parts {
		b.WriteString("- " + p + "\n")
	}
	b.WriteString("\n")
	return b.String()
}
