//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	framesPerBuffer  = 320 // 20 ms at 16 kHz
	silenceThreshold = int16(500)
)

// MicrophoneSource captures mono 16-bit audio. NextCommand records one
// utterance as WAV; ReadFrame streams raw PCM for realtime STT.
type MicrophoneSource struct {
	stream     *portaudio.Stream
	sampleRate int
	logger     *slog.Logger

	mu    sync.Mutex
	frame []int16
}

func NewMicrophoneSource(sampleRate int, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{
		sampleRate: sampleRate,
		logger:     logger,
		frame:      make([]int16, framesPerBuffer),
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream != nil {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), len(m.frame), m.frame)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	m.stream = stream
	m.logger.Info("microphone started", "sampleRate", m.sampleRate)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream == nil {
		return nil
	}
	m.stream.Stop()
	m.stream.Close()
	m.stream = nil
	return portaudio.Terminate()
}

func (m *MicrophoneSource) read(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream == nil {
		return nil, fmt.Errorf("microphone not started")
	}
	if err := m.stream.Read(); err != nil {
		return nil, fmt.Errorf("reading from stream: %w", err)
	}
	return append([]int16(nil), m.frame...), nil
}

func (m *MicrophoneSource) ReadFrame(ctx context.Context) ([]byte, error) {
	samples, err := m.read(ctx)
	if err != nil {
		return nil, err
	}
	return SamplesToPCM(samples), nil
}

// NextCommand records until a second of silence follows at least a second of
// audio, capped at ten seconds.
func (m *MicrophoneSource) NextCommand(ctx context.Context) ([]byte, error) {
	m.logger.Info("listening for a request")

	samples := make([]int16, 0, m.sampleRate*5)
	silenceDuration := 0
	maxSilenceFrames := m.sampleRate

	for {
		frame, err := m.read(ctx)
		if err != nil {
			return nil, err
		}
		samples = append(samples, frame...)

		if isSilent(frame) {
			silenceDuration += len(frame)
		} else {
			silenceDuration = 0
		}

		if silenceDuration > maxSilenceFrames && len(samples) > m.sampleRate {
			break
		}
		if len(samples) > m.sampleRate*10 {
			break
		}
	}

	return EncodeWAV(SamplesToPCM(samples), m.sampleRate), nil
}

func isSilent(frame []int16) bool {
	for _, sample := range frame {
		if sample > silenceThreshold || sample < -silenceThreshold {
			return false
		}
	}
	return true
}
