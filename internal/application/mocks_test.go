package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"golf-caddie/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockSource struct {
	events []domain.Transcript
	errs   map[int]error
	index  int
	delay  time.Duration
}

func (m *mockSource) Start(_ context.Context) error { return nil }
func (m *mockSource) Stop() error                   { return nil }
func (m *mockSource) Name() string                  { return "mock" }

func (m *mockSource) Next(ctx context.Context) (domain.Transcript, error) {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return domain.Transcript{}, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if err, ok := m.errs[m.index]; ok {
		delete(m.errs, m.index)
		return domain.Transcript{}, err
	}
	if m.index >= len(m.events) {
		return domain.Transcript{}, io.EOF
	}
	t := m.events[m.index]
	m.index++
	return t, nil
}

// blockingSource hands out events from a channel so tests control timing.
type blockingSource struct {
	ch chan domain.Transcript
}

func (b *blockingSource) Start(_ context.Context) error { return nil }
func (b *blockingSource) Stop() error                   { return nil }
func (b *blockingSource) Name() string                  { return "blocking" }

func (b *blockingSource) Next(ctx context.Context) (domain.Transcript, error) {
	select {
	case <-ctx.Done():
		return domain.Transcript{}, ctx.Err()
	case t, ok := <-b.ch:
		if !ok {
			return domain.Transcript{}, io.EOF
		}
		return t, nil
	}
}

type mockRecommender struct {
	mu      sync.Mutex
	name    string
	reply   string
	err     error
	prompts []string
}

func (m *mockRecommender) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func (m *mockRecommender) Recommend(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

func (m *mockRecommender) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

type mockWeather struct {
	mu      sync.Mutex
	reading domain.WindReading
	err     error
	calls   []domain.Coordinates
}

func (m *mockWeather) CurrentWind(_ context.Context, at domain.Coordinates) (domain.WindReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, at)
	if m.err != nil {
		return domain.WindReading{}, m.err
	}
	return m.reading, nil
}

func (m *mockWeather) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockGeocoder struct {
	coords  domain.Coordinates
	err     error
	queries []string
}

func (m *mockGeocoder) Geocode(_ context.Context, query string) (domain.Coordinates, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return domain.Coordinates{}, m.err
	}
	return m.coords, nil
}

type mockSpeaker struct {
	mu   sync.Mutex
	said []string
	err  error
}

func (m *mockSpeaker) Say(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.said = append(m.said, text)
	return m.err
}

func (m *mockSpeaker) lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.said...)
}

type mockNotifier struct {
	messages []string
}

func (m *mockNotifier) Notify(_ context.Context, message string) error {
	m.messages = append(m.messages, message)
	return nil
}

var errBoom = errors.New("boom")
