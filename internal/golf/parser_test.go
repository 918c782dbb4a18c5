package golf_test

import (
	"reflect"
	"testing"

	"golf-caddie/internal/domain"
	"golf-caddie/internal/golf"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		text string
		want domain.RequestKind
	}{
		{"What's the wind like?", domain.RequestWeather},
		{"How windy is it out here", domain.RequestWeather},
		{"Can you tell me the current conditions", domain.RequestWeather},
		{"Please give me a weather report", domain.RequestWeather},
		{"What's the forecast", domain.RequestWeather},
		{"What's the wind doing, which club should I take", domain.RequestShot},
		{"150 yards from the fairway, what club?", domain.RequestShot},
		{"I'm in the rough", domain.RequestShot},
		{"", domain.RequestShot},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := golf.DetectKind(tt.text); got != tt.want {
				t.Errorf("DetectKind(%q): got %s, want %s", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseShot(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		distance *int
		lie      domain.Lie
		hazards  []string
		club     string
	}{
		{
			name:     "rough with water",
			text:     "I'm 150 yards out in the rough, water left",
			distance: domain.IntPtr(150),
			lie:      domain.LieRough,
			hazards:  []string{"water"},
		},
		{
			name:     "bunker is the lie, not a hazard",
			text:     "about 95y from the bunker",
			distance: domain.IntPtr(95),
			lie:      domain.LieSand,
		},
		{
			name:     "at distance with numbered iron",
			text:     "thinking 7 iron at 160",
			distance: domain.IntPtr(160),
			lie:      domain.LieFairway,
			club:     "7-iron",
		},
		{
			name: "short distances are ignored",
			text: "it's 30 yards",
			lie:  domain.LieFairway,
		},
		{
			name:     "word number iron",
			text:     "seven iron from 150 yards",
			distance: domain.IntPtr(150),
			lie:      domain.LieFairway,
			club:     "7-iron",
		},
		{
			name:     "sand wedge does not imply a sand lie",
			text:     "85 yards, sand wedge?",
			distance: domain.IntPtr(85),
			lie:      domain.LieFairway,
			club:     "sand-wedge",
		},
		{
			name:     "tee shot with trees and driver",
			text:     "on the tee, 280 yard par 4, trees right, driver?",
			distance: domain.IntPtr(280),
			lie:      domain.LieTee,
			hazards:  []string{"trees"},
			club:     "driver",
		},
		{
			name: "word number wood",
			text: "should I hit the three wood",
			lie:  domain.LieFairway,
			club: "3-wood",
		},
		{
			name:     "abbreviated wedge",
			text:     "110 yds, my pw",
			distance: domain.IntPtr(110),
			lie:      domain.LieFairway,
			club:     "pitching-wedge",
		},
		{
			name:     "sand lie with front bunker",
			text:     "in the sand, 120 yards, another bunker in front of the green",
			distance: domain.IntPtr(120),
			lie:      domain.LieSand,
			hazards:  []string{"front_bunker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := golf.ParseShot(tt.text, nil, nil)

			if !reflect.DeepEqual(got.DistanceYards, tt.distance) {
				t.Errorf("DistanceYards: got %v, want %v", deref(got.DistanceYards), deref(tt.distance))
			}
			if got.Lie != tt.lie {
				t.Errorf("Lie: got %s, want %s", got.Lie, tt.lie)
			}
			if len(got.Hazards) != len(tt.hazards) || (len(tt.hazards) > 0 && !reflect.DeepEqual(got.Hazards, tt.hazards)) {
				t.Errorf("Hazards: got %v, want %v", got.Hazards, tt.hazards)
			}
			if got.Club != tt.club {
				t.Errorf("Club: got %q, want %q", got.Club, tt.club)
			}
			if got.RawText != tt.text {
				t.Errorf("RawText: got %q", got.RawText)
			}
		})
	}
}

func TestExtractHandicap(t *testing.T) {
	tests := []struct {
		text string
		want *int
	}{
		{"i'm a 12 handicap", domain.IntPtr(12)},
		{"I'm a twelve handicap", domain.IntPtr(12)},
		{"my handicap is 8", domain.IntPtr(8)},
		{"my handicap is nine", domain.IntPtr(9)},
		{"18 handicap player here", domain.IntPtr(18)},
		{"handicap 4", domain.IntPtr(4)},
		{"i play to 10", domain.IntPtr(10)},
		{"i play to a 6", domain.IntPtr(6)},
		{"I'm a scratch golfer", domain.IntPtr(0)},
		{"i'm a -2 handicap", domain.IntPtr(0)},
		{"i'm a 35 handicap", domain.IntPtr(30)},
		{"150 yards to the pin", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := golf.ExtractHandicap(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractHandicap(%q): got %v, want %v", tt.text, deref(got), deref(tt.want))
			}
		})
	}
}

func TestParseShot_Validation(t *testing.T) {
	table := golf.DefaultStatistics()

	got := golf.ParseShot("I hit my 7 iron 250 yards", domain.IntPtr(15), table)
	if got.ValidationWarning != "Unusually long (expected ~120y)" {
		t.Errorf("ValidationWarning: got %q", got.ValidationWarning)
	}

	got = golf.ParseShot("I hit my 7 iron 250 yards", nil, table)
	if got.ValidationWarning != "" {
		t.Errorf("no handicap should mean no warning, got %q", got.ValidationWarning)
	}

	got = golf.ParseShot("I'm a 15 handicap, 7 iron goes 170 yards", domain.IntPtr(0), table)
	if got.ValidationWarning == "" {
		t.Error("mentioned handicap should override the session handicap for validation")
	}
	if got.HandicapMentioned == nil || *got.HandicapMentioned != 15 {
		t.Errorf("HandicapMentioned: got %v, want 15", deref(got.HandicapMentioned))
	}

	got = golf.ParseShot("I'm a scratch golfer, 7 iron 170 yards", nil, table)
	if got.ValidationWarning != "" {
		t.Errorf("realistic claim should not warn, got %q", got.ValidationWarning)
	}

	got = golf.ParseShot("I hit my 7 iron 250 yards", domain.IntPtr(15), nil)
	if got.ValidationWarning != "" {
		t.Errorf("no table should mean no warning, got %q", got.ValidationWarning)
	}
}

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
