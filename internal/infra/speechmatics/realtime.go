package speechmatics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"golf-caddie/internal/application"
	"golf-caddie/internal/domain"
	"golf-caddie/internal/infra"
)

const (
	DefaultRealtimeURL = "wss://eu2.rt.speechmatics.com/v2"
	handshakeTimeout   = 10 * time.Second
	drainTimeout       = 10 * time.Second
	writeFailureGrace  = time.Second
)

type RealtimeConfig struct {
	URL            string
	APIKey         string
	Language       string
	SampleRate     int
	MaxDelay       float64
	OperatingPoint string
	// EndOfUtteranceSilence is the pause, in seconds, after which the server sends EndOfUtterance.
	EndOfUtteranceSilence float64
	// Reconnect paces reconnection; MaxAttempts is the number of consecutive failed sessions tolerated.
	Reconnect infra.RetryConfig
}

func (c *RealtimeConfig) setDefaults() {
	if c.URL == "" {
		c.URL = DefaultRealtimeURL
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 1.0
	}
	if c.OperatingPoint == "" {
		c.OperatingPoint = "enhanced"
	}
	if c.EndOfUtteranceSilence == 0 {
		c.EndOfUtteranceSilence = 0.5
	}
	if c.Reconnect.MaxAttempts == 0 {
		c.Reconnect = infra.RetryConfig{
			MaxAttempts:  5,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		}
	}
}

// RealtimeSource streams microphone PCM to the Speechmatics realtime API and
// yields partial, final and end-of-utterance events.
type RealtimeSource struct {
	cfg    RealtimeConfig
	audio  application.PCMStream
	dialer *websocket.Dialer
	logger *slog.Logger

	events chan domain.Transcript
	done   chan struct{}
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

func NewRealtimeSource(cfg RealtimeConfig, audio application.PCMStream, logger *slog.Logger) *RealtimeSource {
	cfg.setDefaults()
	return &RealtimeSource{
		cfg:    cfg,
		audio:  audio,
		dialer: &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		logger: logger.With("component", "speechmatics"),
	}
}

func (s *RealtimeSource) Name() string {
	return "speechmatics"
}

func (s *RealtimeSource) Start(ctx context.Context) error {
	if err := s.audio.Start(ctx); err != nil {
		return fmt.Errorf("starting audio stream: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.events = make(chan domain.Transcript, 64)
	s.done = make(chan struct{})
	go s.run(runCtx)
	return nil
}

func (s *RealtimeSource) Stop() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return s.audio.Stop()
}

// Next returns io.EOF once the audio stream ended and the server finished the transcript.
func (s *RealtimeSource) Next(ctx context.Context) (domain.Transcript, error) {
	if s.events == nil {
		return domain.Transcript{}, fmt.Errorf("realtime source not started")
	}
	select {
	case <-ctx.Done():
		return domain.Transcript{}, ctx.Err()
	case t, ok := <-s.events:
		if !ok {
			return domain.Transcript{}, s.terminalErr()
		}
		return t, nil
	}
}

func (s *RealtimeSource) terminalErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return io.EOF
	}
	return s.err
}

func (s *RealtimeSource) finish(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *RealtimeSource) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.events)

	delay := s.cfg.Reconnect.InitialDelay
	failures := 0
	for {
		started, err := s.session(ctx)
		switch {
		case err == nil:
			s.finish(io.EOF)
			return
		case ctx.Err() != nil:
			s.finish(ctx.Err())
			return
		case infra.IsPermanent(err):
			s.logger.Error("realtime session failed", "error", err)
			s.finish(errors.Unwrap(err))
			return
		}

		if started {
			failures = 0
			delay = s.cfg.Reconnect.InitialDelay
		}
		failures++
		if failures >= s.cfg.Reconnect.MaxAttempts {
			s.finish(fmt.Errorf("speechmatics unavailable after %d attempts: %w", failures, err))
			return
		}

		s.logger.Warn("realtime session dropped, reconnecting", "error", err, "delay", delay, "attempt", failures)
		select {
		case <-ctx.Done():
			s.finish(ctx.Err())
			return
		case <-time.After(delay):
		}
		delay = s.cfg.Reconnect.Next(delay)
	}
}

// session runs one websocket connection. started reports whether the server
// accepted the recognition request; a nil error means the stream ended cleanly.
func (s *RealtimeSource) session(ctx context.Context) (started bool, err error) {
	header := http.Header{"Authorization": []string{"Bearer " + s.cfg.APIKey}}
	conn, resp, err := s.dialer.DialContext(ctx, s.cfg.URL, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return false, infra.Permanent(fmt.Errorf("speechmatics rejected credentials: %s", resp.Status))
		}
		return false, fmt.Errorf("dialing speechmatics: %w", err)
	}
	defer conn.Close()

	sessCtx, cancel := context.WithCancel(ctx)
	readErr := make(chan error, 1)
	readerDone := make(chan struct{})
	recognition := make(chan struct{})

	go func() {
		<-sessCtx.Done()
		conn.Close()
	}()
	go func() {
		defer close(readerDone)
		err := s.readLoop(sessCtx, conn, recognition)
		cancel()
		readErr <- err
	}()
	defer func() {
		cancel()
		<-readerDone
	}()

	if err := conn.WriteJSON(newStartRecognition(s.cfg)); err != nil {
		return false, fmt.Errorf("sending StartRecognition: %w", err)
	}

	select {
	case <-recognition:
	case err := <-readErr:
		return false, sessionEnded(err)
	case <-sessCtx.Done():
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, sessionEnded(<-readErr)
	case <-time.After(handshakeTimeout):
		return false, fmt.Errorf("timed out waiting for RecognitionStarted")
	}
	s.logger.Info("realtime recognition started", "url", s.cfg.URL)

	seq := 0
	for {
		frame, err := s.audio.ReadFrame(sessCtx)
		if errors.Is(err, io.EOF) {
			if err := conn.WriteJSON(endOfStream{Message: "EndOfStream", LastSeqNo: seq}); err != nil {
				return true, s.writeFailed(ctx, readErr, fmt.Errorf("sending EndOfStream: %w", err))
			}
			return true, s.drain(ctx, readErr)
		}
		if err != nil {
			if sessCtx.Err() != nil {
				if ctx.Err() != nil {
					return true, ctx.Err()
				}
				return true, sessionEnded(<-readErr)
			}
			return true, infra.Permanent(fmt.Errorf("reading audio frame: %w", err))
		}

		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return true, s.writeFailed(ctx, readErr, fmt.Errorf("sending audio: %w", err))
		}
		seq++
	}
}

// drain waits for EndOfTranscript after EndOfStream was sent.
func (s *RealtimeSource) drain(ctx context.Context, readErr <-chan error) error {
	select {
	case err := <-readErr:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(drainTimeout):
		return fmt.Errorf("timed out waiting for EndOfTranscript")
	}
}

// writeFailed prefers the reader's error after a failed write, since a server
// Error message usually arrives just before the socket closes.
func (s *RealtimeSource) writeFailed(ctx context.Context, readErr <-chan error, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	select {
	case rerr := <-readErr:
		if rerr != nil && ctx.Err() == nil {
			return rerr
		}
	case <-time.After(writeFailureGrace):
	}
	return err
}

func sessionEnded(err error) error {
	if err == nil {
		return fmt.Errorf("server ended the transcript unexpectedly")
	}
	return err
}

func (s *RealtimeSource) readLoop(ctx context.Context, conn *websocket.Conn, recognition chan<- struct{}) error {
	startedOnce := sync.OnceFunc(func() { close(recognition) })

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading message: %w", err)
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Warn("ignoring malformed message", "error", err)
			continue
		}

		switch msg.Message {
		case "RecognitionStarted":
			startedOnce()
		case "AddPartialTranscript":
			if text := strings.TrimSpace(msg.Metadata.Transcript); text != "" {
				s.emit(ctx, domain.Transcript{Text: text, ReceivedAt: time.Now()})
			}
		case "AddTranscript":
			if text := strings.TrimSpace(msg.Metadata.Transcript); text != "" {
				s.emit(ctx, domain.Transcript{Text: text, Final: true, ReceivedAt: time.Now()})
			}
		case "EndOfUtterance":
			s.emit(ctx, domain.Transcript{EndOfUtterance: true, ReceivedAt: time.Now()})
		case "AudioAdded":
			s.logger.Debug("audio acknowledged", "seq_no", msg.SeqNo)
		case "Info":
			s.logger.Debug("server info", "type", msg.Type, "reason", msg.Reason)
		case "Warning":
			s.logger.Warn("server warning", "type", msg.Type, "reason", msg.Reason)
		case "Error":
			err := fmt.Errorf("speechmatics error %s: %s", msg.Type, msg.Reason)
			if fatalErrorTypes[msg.Type] {
				return infra.Permanent(err)
			}
			return err
		case "EndOfTranscript":
			return nil
		default:
			s.logger.Debug("unhandled message", "message", msg.Message)
		}
	}
}

func (s *RealtimeSource) emit(ctx context.Context, t domain.Transcript) {
	select {
	case s.events <- t:
	case <-ctx.Done():
	}
}

// Errors that a reconnect cannot fix.
var fatalErrorTypes = map[string]bool{
	"not_authorised":     true,
	"invalid_model":      true,
	"invalid_config":     true,
	"invalid_audio_type": true,
	"not_allowed":        true,
	"insufficient_funds": true,
	"protocol_error":     true,
}

type audioFormat struct {
	Type       string `json:"type"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

type conversationConfig struct {
	EndOfUtteranceSilenceTrigger float64 `json:"end_of_utterance_silence_trigger"`
}

type transcriptionConfig struct {
	Language           string             `json:"language"`
	EnablePartials     bool               `json:"enable_partials"`
	MaxDelay           float64            `json:"max_delay"`
	OperatingPoint     string             `json:"operating_point"`
	ConversationConfig conversationConfig `json:"conversation_config"`
}

type startRecognition struct {
	Message             string              `json:"message"`
	AudioFormat         audioFormat         `json:"audio_format"`
	TranscriptionConfig transcriptionConfig `json:"transcription_config"`
}

func newStartRecognition(cfg RealtimeConfig) startRecognition {
	return startRecognition{
		Message:     "StartRecognition",
		AudioFormat: audioFormat{Type: "raw", Encoding: "pcm_s16le", SampleRate: cfg.SampleRate},
		TranscriptionConfig: transcriptionConfig{
			Language:           cfg.Language,
			EnablePartials:     true,
			MaxDelay:           cfg.MaxDelay,
			OperatingPoint:     cfg.OperatingPoint,
			ConversationConfig: conversationConfig{EndOfUtteranceSilenceTrigger: cfg.EndOfUtteranceSilence},
		},
	}
}

type endOfStream struct {
	Message   string `json:"message"`
	LastSeqNo int    `json:"last_seq_no"`
}

type serverMessage struct {
	Message  string `json:"message"`
	SeqNo    int    `json:"seq_no"`
	Type     string `json:"type"`
	Reason   string `json:"reason"`
	Metadata struct {
		Transcript string `json:"transcript"`
	} `json:"metadata"`
}
