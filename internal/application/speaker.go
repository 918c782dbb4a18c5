package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

type Speaker interface {
	Say(ctx context.Context, text string) error
}

// ConsoleSpeaker writes replies as lines of text.
type ConsoleSpeaker struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleSpeaker(w io.Writer) *ConsoleSpeaker {
	return &ConsoleSpeaker{w: w}
}

func (c *ConsoleSpeaker) Say(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "Caddie: %s\n", text)
	return err
}

// VoiceSpeaker prints every reply and then synthesizes and plays it.
// The printed line stays as the record when synthesis or playback fails.
type VoiceSpeaker struct {
	console *ConsoleSpeaker
	tts     Synthesizer
	player  Player
	logger  *slog.Logger
}

func NewVoiceSpeaker(console *ConsoleSpeaker, tts Synthesizer, player Player, logger *slog.Logger) *VoiceSpeaker {
	return &VoiceSpeaker{console: console, tts: tts, player: player, logger: logger}
}

func (v *VoiceSpeaker) Say(ctx context.Context, text string) error {
	if err := v.console.Say(ctx, text); err != nil {
		v.logger.Warn("console output failed", "error", err)
	}

	pcm, err := v.tts.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesizing speech: %w", err)
	}
	if err := v.player.Play(ctx, pcm, v.tts.SampleRate()); err != nil {
		return fmt.Errorf("playing speech: %w", err)
	}
	v.logger.Debug("reply spoken", "bytes", len(pcm))
	return nil
}
