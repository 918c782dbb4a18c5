package audio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golf-caddie/internal/domain"
)

type EventKind string

const (
	EventPartial EventKind = "partial"
	EventFinal   EventKind = "final"
	EventEnd     EventKind = "end"
)

type ScriptedEvent struct {
	Kind  EventKind
	Text  string
	Delay time.Duration
}

// ScriptedSource replays canned STT events, for demos and tests without a microphone.
type ScriptedSource struct {
	events []ScriptedEvent
	mu     sync.Mutex
	pos    int
}

func NewScriptedSource(events []ScriptedEvent) *ScriptedSource {
	return &ScriptedSource{events: events}
}

// LoadScript reads a script file; see ParseScript.
func LoadScript(path string, delay time.Duration) ([]ScriptedEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening script: %w", err)
	}
	defer f.Close()
	return ParseScript(f, delay)
}

// ParseScript reads one event per line: "partial: text", "final: text" or "end".
// Blank lines and lines starting with # are skipped. Every event waits delay.
func ParseScript(r io.Reader, delay time.Duration) ([]ScriptedEvent, error) {
	var events []ScriptedEvent
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kind, text, _ := strings.Cut(line, ":")
		ev := ScriptedEvent{Kind: EventKind(strings.ToLower(strings.TrimSpace(kind))), Text: strings.TrimSpace(text), Delay: delay}
		switch ev.Kind {
		case EventPartial, EventFinal:
			if ev.Text == "" {
				return nil, fmt.Errorf("line %d: %s event without text", lineNo, ev.Kind)
			}
		case EventEnd:
		default:
			return nil, fmt.Errorf("line %d: unknown event %q", lineNo, kind)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return events, nil
}

func (s *ScriptedSource) Name() string                  { return "scripted" }
func (s *ScriptedSource) Start(_ context.Context) error { return nil }
func (s *ScriptedSource) Stop() error                   { return nil }

func (s *ScriptedSource) Next(ctx context.Context) (domain.Transcript, error) {
	s.mu.Lock()
	if s.pos >= len(s.events) {
		s.mu.Unlock()
		return domain.Transcript{}, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	s.mu.Unlock()

	if ev.Delay > 0 {
		select {
		case <-ctx.Done():
			return domain.Transcript{}, ctx.Err()
		case <-time.After(ev.Delay):
		}
	}

	t := domain.Transcript{Text: ev.Text, ReceivedAt: time.Now()}
	switch ev.Kind {
	case EventFinal:
		t.Final = true
	case EventEnd:
		t.EndOfUtterance = true
	}
	return t, nil
}
