//go:build !playback
// +build !playback

package playback

import (
	"context"
	"fmt"
)

// SpeakerPlayer stub when built without the playback tag.
type SpeakerPlayer struct{}

func NewSpeakerPlayer() (*SpeakerPlayer, error) {
	return nil, fmt.Errorf("speaker playback not available: rebuild with -tags playback")
}

func (p *SpeakerPlayer) Play(_ context.Context, _ []byte, _ int) error {
	return fmt.Errorf("speaker playback not available")
}
