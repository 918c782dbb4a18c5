package application

import "context"

// AudioSource yields one recorded utterance per call, or a text payload
// prefixed with domain.TextCommandPrefix.
type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextCommand(ctx context.Context) ([]byte, error)
	Name() string
}

// PCMStream yields continuous 16-bit little-endian mono PCM frames for realtime STT.
type PCMStream interface {
	Start(ctx context.Context) error
	Stop() error
	ReadFrame(ctx context.Context) ([]byte, error)
}

type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func DefaultAudioFormat() AudioFormat {
	return AudioFormat{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
	}
}
