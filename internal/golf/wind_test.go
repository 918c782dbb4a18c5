package golf_test

import (
	"math"
	"strings"
	"testing"

	"golf-caddie/internal/domain"
	"golf-caddie/internal/golf"
)

func TestWindComponents(t *testing.T) {
	tests := []struct {
		name      string
		speed     float64
		from      int
		bearing   int
		wantHead  float64
		wantCross float64
	}{
		{"straight into the wind", 5, 0, 0, 5, 0},
		{"straight downwind", 5, 180, 0, -5, 0},
		{"wind from the left", 5, 270, 0, 0, -5},
		{"wind from the right", 5, 90, 0, 0, 5},
		{"bearing rotates the frame", 4, 90, 90, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, cross := golf.WindComponents(tt.speed, tt.from, tt.bearing)
			if math.Abs(head-tt.wantHead) > 1e-9 {
				t.Errorf("head: got %.3f, want %.3f", head, tt.wantHead)
			}
			if math.Abs(cross-tt.wantCross) > 1e-9 {
				t.Errorf("cross: got %.3f, want %.3f", cross, tt.wantCross)
			}
		})
	}
}

func TestSummarizeWind(t *testing.T) {
	tests := []struct {
		speed, head, cross float64
		want               string
	}{
		{5, 0, -5, "11 mph, neutral wind, left-to-right"},
		{5, 5, 0, "11 mph, headwind"},
		{3, -2, 2, "7 mph, tailwind, right-to-left"},
		{0.2, 0.1, 0.1, "0 mph, neutral wind"},
	}

	for _, tt := range tests {
		if got := golf.SummarizeWind(tt.speed, tt.head, tt.cross); got != tt.want {
			t.Errorf("SummarizeWind(%v, %v, %v): got %q, want %q", tt.speed, tt.head, tt.cross, got, tt.want)
		}
	}
}

func TestResolveWind(t *testing.T) {
	w := golf.ResolveWind(domain.WindReading{SpeedMS: 5, DirectionDeg: 270, Stale: true}, 0)

	if math.Abs(w.HeadwindMS) > 1e-9 {
		t.Errorf("HeadwindMS: got %.3f, want ~0", w.HeadwindMS)
	}
	if w.CrosswindMS >= -4 {
		t.Errorf("CrosswindMS: got %.3f, want < -4", w.CrosswindMS)
	}
	if !strings.Contains(w.Summary, "left-to-right") {
		t.Errorf("Summary: got %q", w.Summary)
	}
	if !w.Stale {
		t.Error("Stale flag should carry over from the reading")
	}
}
