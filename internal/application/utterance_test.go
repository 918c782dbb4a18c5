package application_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"golf-caddie/internal/application"
	"golf-caddie/internal/domain"
)

func TestUtteranceAssembler_EndOfUtterance(t *testing.T) {
	src := &mockSource{events: []domain.Transcript{
		{Text: "one fifty", Final: false},
		{Text: "150 yards", Final: true},
		{Text: "from the rough", Final: true},
		{EndOfUtterance: true},
		{EndOfUtterance: true},
		{Text: "what club", Final: true},
	}}
	u := application.NewUtteranceAssembler(src, time.Hour, discardLogger())

	ctx := context.Background()
	if err := u.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer u.Stop()

	got, err := u.Next(ctx)
	if err != nil || got.Final || got.Text != "one fifty" {
		t.Fatalf("partial should pass through: got %+v, %v", got, err)
	}

	got, err = u.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !got.Final || got.Text != "150 yards from the rough" {
		t.Errorf("assembled: got %+v", got)
	}

	got, err = u.Next(ctx)
	if err != nil || got.Text != "what club" {
		t.Errorf("trailing segment should flush at end of stream: got %+v, %v", got, err)
	}

	if _, err := u.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestUtteranceAssembler_SilenceTimeout(t *testing.T) {
	src := &blockingSource{ch: make(chan domain.Transcript, 4)}
	u := application.NewUtteranceAssembler(src, 50*time.Millisecond, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := u.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer u.Stop()

	src.ch <- domain.Transcript{Text: "140 out", Final: true}
	src.ch <- domain.Transcript{Text: "into the wind", Final: true}

	start := time.Now()
	got, err := u.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.Text != "140 out into the wind" {
		t.Errorf("assembled: got %q", got.Text)
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Error("utterance emitted before the silence timeout")
	}
}

func TestUtteranceAssembler_DropsEmpty(t *testing.T) {
	src := &mockSource{events: []domain.Transcript{
		{Text: "  ", Final: true},
		{EndOfUtterance: true},
	}}
	u := application.NewUtteranceAssembler(src, time.Hour, discardLogger())

	ctx := context.Background()
	u.Start(ctx)
	defer u.Stop()

	if _, err := u.Next(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("empty utterance should be dropped, got %v", err)
	}
}

func TestUtteranceAssembler_NotStarted(t *testing.T) {
	u := application.NewUtteranceAssembler(&mockSource{}, 0, discardLogger())
	if _, err := u.Next(context.Background()); err == nil {
		t.Error("expected error before Start")
	}
}
