package playback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golf-caddie/internal/infra/audio"
)

// FilePlayer writes each clip to dir as a WAV file, for hosts without an audio device.
type FilePlayer struct {
	dir string
	seq atomic.Int64
	now func() time.Time
}

func NewFilePlayer(dir string) *FilePlayer {
	return &FilePlayer{dir: dir, now: time.Now}
}

func (p *FilePlayer) Play(_ context.Context, pcm []byte, sampleRate int) error {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	name := fmt.Sprintf("caddie_%s_%03d.wav", p.now().Format("20060102T150405"), p.seq.Add(1))
	path := filepath.Join(p.dir, name)
	if err := os.WriteFile(path, audio.EncodeWAV(pcm, sampleRate), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
