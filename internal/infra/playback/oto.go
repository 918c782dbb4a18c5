//go:build playback
// +build playback

package playback

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// SpeakerPlayer plays PCM on the default output device. oto allows one context
// per process, so the first sample rate played fixes the device rate.
type SpeakerPlayer struct {
	mu   sync.Mutex
	ctx  *oto.Context
	rate int
}

func NewSpeakerPlayer() (*SpeakerPlayer, error) {
	return &SpeakerPlayer{}, nil
}

func (p *SpeakerPlayer) context(sampleRate int) (*oto.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx != nil {
		if p.rate != sampleRate {
			return nil, fmt.Errorf("audio device opened at %d Hz, cannot play %d Hz", p.rate, sampleRate)
		}
		return p.ctx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	p.ctx = ctx
	p.rate = sampleRate
	return ctx, nil
}

// Play blocks until the clip finishes or ctx is done.
func (p *SpeakerPlayer) Play(ctx context.Context, pcm []byte, sampleRate int) error {
	otoCtx, err := p.context(sampleRate)
	if err != nil {
		return err
	}

	player := otoCtx.NewPlayer(bytes.NewReader(pcm))
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
