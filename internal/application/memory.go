package application

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"golf-caddie/internal/domain"
	"golf-caddie/internal/golf"
)

const DefaultHistorySize = 10

// SessionState is a point-in-time copy of what the caddie remembers about the round.
type SessionState struct {
	ID         string
	Handicap   *int
	Location   *domain.Location
	Conditions string
	Wind       *domain.WindReading
	Layout     string
	History    []domain.Exchange
}

// Memory is the in-process round state. It is written by the conversation loop and
// the conditions monitor, so every accessor locks.
type Memory struct {
	mu       sync.RWMutex
	state    SessionState
	capacity int
}

func NewMemory(capacity int, handicap *int) *Memory {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	m := &Memory{
		capacity: capacity,
		state:    SessionState{ID: uuid.NewString()},
	}
	if handicap != nil {
		m.SetHandicap(*handicap)
	}
	return m
}

func (m *Memory) ID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ID
}

func (m *Memory) SetHandicap(h int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Handicap = &h
}

func (m *Memory) SetLocation(loc domain.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Location = &loc
}

// SetWind stores the latest reading and its spoken summary as the current conditions.
func (m *Memory) SetWind(r domain.WindReading, summary string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Wind = &r
	m.state.Conditions = summary
}

func (m *Memory) SetLayout(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Layout = golf.LayoutNote(text)
}

func (m *Memory) ClearLayout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Layout = ""
}

// Remember appends an exchange, dropping the oldest beyond capacity. An empty id gets a new one.
func (m *Memory) Remember(id, said, reply string) domain.Exchange {
	if id == "" {
		id = uuid.NewString()
	}
	ex := domain.Exchange{ID: id, Said: said, Reply: reply, At: time.Now()}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.History = append(m.state.History, ex)
	if over := len(m.state.History) - m.capacity; over > 0 {
		m.state.History = append([]domain.Exchange(nil), m.state.History[over:]...)
	}
	return ex
}

func (m *Memory) Snapshot() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.state
	if s.Handicap != nil {
		h := *s.Handicap
		s.Handicap = &h
	}
	if s.Location != nil {
		loc := *s.Location
		s.Location = &loc
	}
	if s.Wind != nil {
		w := *s.Wind
		s.Wind = &w
	}
	s.History = append([]domain.Exchange(nil), s.History...)
	return s
}
