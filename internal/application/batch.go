package application

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golf-caddie/internal/domain"
)

// BatchTranscripts turns one recorded utterance per AudioSource call into a final
// transcript. Payloads carrying domain.TextCommandPrefix skip transcription.
type BatchTranscripts struct {
	audio  AudioSource
	stt    SpeechToText
	logger *slog.Logger
}

func NewBatchTranscripts(audio AudioSource, stt SpeechToText, logger *slog.Logger) *BatchTranscripts {
	return &BatchTranscripts{audio: audio, stt: stt, logger: logger}
}

func (b *BatchTranscripts) Name() string                    { return b.audio.Name() }
func (b *BatchTranscripts) Start(ctx context.Context) error { return b.audio.Start(ctx) }
func (b *BatchTranscripts) Stop() error                     { return b.audio.Stop() }

// Next blocks for the next utterance. Empty payloads and empty transcriptions
// come back as a final transcript with no text, which the caddie ignores.
func (b *BatchTranscripts) Next(ctx context.Context) (domain.Transcript, error) {
	data, err := b.audio.NextCommand(ctx)
	if err != nil {
		return domain.Transcript{}, err
	}
	if len(data) == 0 {
		return domain.Transcript{Final: true, ReceivedAt: time.Now()}, nil
	}

	if text, ok := isTextCommand(data); ok {
		b.logger.Info("received text directly", "text", text)
		return domain.Transcript{Text: text, Final: true, ReceivedAt: time.Now()}, nil
	}

	b.logger.Info("received audio", "bytes", len(data))
	text, err := b.stt.Transcribe(ctx, data)
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("transcribing: %w", err)
	}
	b.logger.Info("transcribed", "text", text)
	return domain.Transcript{Text: strings.TrimSpace(text), Final: true, ReceivedAt: time.Now()}, nil
}

func isTextCommand(data []byte) (string, bool) {
	prefix := []byte(domain.TextCommandPrefix)
	if len(data) > len(prefix) && bytes.HasPrefix(data, prefix) {
		return string(data[len(prefix):]), true
	}
	return "", false
}
