package application_test

import (
	"strings"
	"sync"
	"testing"

	"golf-caddie/internal/application"
	"golf-caddie/internal/domain"
)

func TestMemory_SnapshotIsACopy(t *testing.T) {
	m := application.NewMemory(5, domain.IntPtr(12))
	m.SetLocation(domain.Location{Query: "Wentworth", Coordinates: domain.Coordinates{Lat: 51.4, Lon: -0.6}})
	m.Remember("", "150 yards", "7-iron")

	snap := m.Snapshot()
	*snap.Handicap = 3
	snap.Location.Query = "changed"
	snap.History[0].Said = "changed"

	again := m.Snapshot()
	if *again.Handicap != 12 || again.Location.Query != "Wentworth" || again.History[0].Said != "150 yards" {
		t.Errorf("snapshot mutated memory: %+v", again)
	}
	if again.ID == "" || again.ID != m.ID() {
		t.Errorf("session id: got %q", again.ID)
	}
}

func TestMemory_HistoryCapacity(t *testing.T) {
	m := application.NewMemory(3, nil)
	for i := 0; i < 5; i++ {
		m.Remember("", strings.Repeat("x", i+1), "ok")
	}

	history := m.Snapshot().History
	if len(history) != 3 {
		t.Fatalf("history: got %d, want 3", len(history))
	}
	if history[0].Said != "xxx" || history[2].Said != "xxxxx" {
		t.Errorf("oldest should be dropped first: %q .. %q", history[0].Said, history[2].Said)
	}
}

func TestMemory_DefaultCapacity(t *testing.T) {
	m := application.NewMemory(0, nil)
	for i := 0; i < application.DefaultHistorySize+4; i++ {
		m.Remember("", "shot", "reply")
	}
	if got := len(m.Snapshot().History); got != application.DefaultHistorySize {
		t.Errorf("history: got %d, want %d", got, application.DefaultHistorySize)
	}
}

func TestMemory_LayoutAndWind(t *testing.T) {
	m := application.NewMemory(5, nil)

	m.SetLayout(strings.Repeat("dogleg ", 60))
	if got := len(m.Snapshot().Layout); got != 240 {
		t.Errorf("layout length: got %d, want 240", got)
	}
	m.ClearLayout()
	if m.Snapshot().Layout != "" {
		t.Error("layout should be cleared")
	}

	m.SetWind(domain.WindReading{SpeedMS: 4, DirectionDeg: 200}, "9 mph, tailwind")
	state := m.Snapshot()
	if state.Wind == nil || state.Wind.SpeedMS != 4 || state.Conditions != "9 mph, tailwind" {
		t.Errorf("wind: got %+v %q", state.Wind, state.Conditions)
	}
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := application.NewMemory(10, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.SetWind(domain.WindReading{SpeedMS: float64(j)}, "wind")
				m.Remember("", "shot", "reply")
				_ = m.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	if got := len(m.Snapshot().History); got != 10 {
		t.Errorf("history: got %d, want 10", got)
	}
}
