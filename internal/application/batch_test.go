package application_test

import (
	"context"
	"testing"

	"golf-caddie/internal/application"
	"golf-caddie/internal/domain"
)

type mockAudioSource struct {
	commands [][]byte
	index    int
}

func (m *mockAudioSource) Start(_ context.Context) error { return nil }
func (m *mockAudioSource) Stop() error                   { return nil }
func (m *mockAudioSource) Name() string                  { return "mock-audio" }

func (m *mockAudioSource) NextCommand(_ context.Context) ([]byte, error) {
	if m.index >= len(m.commands) {
		return nil, context.Canceled
	}
	audio := m.commands[m.index]
	m.index++
	return audio, nil
}

type mockSTT struct {
	transcriptions map[string]string
	calls          int
}

func (m *mockSTT) Transcribe(_ context.Context, audio []byte) (string, error) {
	m.calls++
	if text, ok := m.transcriptions[string(audio)]; ok {
		return text, nil
	}
	return "", errBoom
}

func TestBatchTranscripts(t *testing.T) {
	audio := &mockAudioSource{commands: [][]byte{
		[]byte("wav-1"),
		[]byte(domain.TextCommandPrefix + "what's the wind"),
		nil,
		[]byte("garbled"),
	}}
	stt := &mockSTT{transcriptions: map[string]string{"wav-1": " 150 yards, what club "}}
	b := application.NewBatchTranscripts(audio, stt, discardLogger())
	ctx := context.Background()

	if b.Name() != "mock-audio" {
		t.Errorf("Name: got %s", b.Name())
	}

	got, err := b.Next(ctx)
	if err != nil || !got.Final || got.Text != "150 yards, what club" {
		t.Errorf("audio: got %+v, %v", got, err)
	}

	got, err = b.Next(ctx)
	if err != nil || got.Text != "what's the wind" {
		t.Errorf("text payload: got %+v, %v", got, err)
	}
	if stt.calls != 1 {
		t.Errorf("text payload should skip STT, calls=%d", stt.calls)
	}

	got, err = b.Next(ctx)
	if err != nil || got.Text != "" || !got.Final {
		t.Errorf("empty payload: got %+v, %v", got, err)
	}

	if _, err := b.Next(ctx); err == nil {
		t.Error("expected transcription error")
	}

	if _, err := b.Next(ctx); err != context.Canceled {
		t.Errorf("exhausted audio: got %v", err)
	}
}
