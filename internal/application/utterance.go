package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golf-caddie/internal/domain"
)

const DefaultSilenceTimeout = 1200 * time.Millisecond

type sourceEvent struct {
	t   domain.Transcript
	err error
}

// UtteranceAssembler joins final STT segments into one utterance, emitted on an
// end-of-utterance event or after a silence timeout following the last segment.
// Partial events pass through unchanged.
type UtteranceAssembler struct {
	src     TranscriptSource
	silence time.Duration
	logger  *slog.Logger

	events  chan sourceEvent
	cancel  context.CancelFunc
	pending []string
}

func NewUtteranceAssembler(src TranscriptSource, silence time.Duration, logger *slog.Logger) *UtteranceAssembler {
	if silence <= 0 {
		silence = DefaultSilenceTimeout
	}
	return &UtteranceAssembler{src: src, silence: silence, logger: logger}
}

func (u *UtteranceAssembler) Name() string {
	return u.src.Name()
}

func (u *UtteranceAssembler) Start(ctx context.Context) error {
	if err := u.src.Start(ctx); err != nil {
		return err
	}
	pumpCtx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.events = make(chan sourceEvent, 16)
	go u.pump(pumpCtx)
	return nil
}

func (u *UtteranceAssembler) Stop() error {
	if u.cancel != nil {
		u.cancel()
	}
	return u.src.Stop()
}

func (u *UtteranceAssembler) pump(ctx context.Context) {
	defer close(u.events)
	for {
		t, err := u.src.Next(ctx)
		select {
		case u.events <- sourceEvent{t: t, err: err}:
		case <-ctx.Done():
			return
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (u *UtteranceAssembler) Next(ctx context.Context) (domain.Transcript, error) {
	if u.events == nil {
		return domain.Transcript{}, fmt.Errorf("utterance assembler not started")
	}

	var silence <-chan time.Time
	if len(u.pending) > 0 {
		silence = time.After(u.silence)
	}

	for {
		select {
		case <-ctx.Done():
			return domain.Transcript{}, ctx.Err()

		case <-silence:
			if t, ok := u.flush(); ok {
				return t, nil
			}
			silence = nil

		case ev, ok := <-u.events:
			if !ok {
				if t, ok := u.flush(); ok {
					return t, nil
				}
				return domain.Transcript{}, io.EOF
			}
			if ev.err != nil {
				if errors.Is(ev.err, io.EOF) {
					if t, ok := u.flush(); ok {
						return t, nil
					}
				}
				return domain.Transcript{}, ev.err
			}

			t := ev.t
			switch {
			case t.EndOfUtterance:
				if out, ok := u.flush(); ok {
					return out, nil
				}
			case t.Final:
				if text := strings.TrimSpace(t.Text); text != "" {
					u.pending = append(u.pending, text)
					silence = time.After(u.silence)
				}
			default:
				return t, nil
			}
		}
	}
}

func (u *UtteranceAssembler) flush() (domain.Transcript, bool) {
	text := strings.TrimSpace(strings.Join(u.pending, " "))
	u.pending = nil
	if text == "" {
		return domain.Transcript{}, false
	}
	u.logger.Debug("utterance assembled", "text", text)
	return domain.Transcript{Text: text, Final: true, ReceivedAt: time.Now()}, true
}
