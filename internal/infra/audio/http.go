package audio

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"golf-caddie/internal/domain"
)

const (
	maxAudioBytes = 10 * 1024 * 1024
	maxTextBytes  = 1024
)

// HTTPSource accepts recorded utterances and typed requests from a phone or
// watch app. Text requests are queued as domain.TextCommandPrefix payloads.
type HTTPSource struct {
	addr        string
	echo        *echo.Echo
	audioChan   chan []byte
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
	closeOnce   sync.Once
	rateLimiter *RateLimiter
	authToken   string
}

type transcriptRequest struct {
	Text string `json:"text"`
}

func NewHTTPSource(addr string, authToken string, logger *slog.Logger) *HTTPSource {
	h := &HTTPSource{
		addr:        addr,
		audioChan:   make(chan []byte, 10),
		logger:      logger,
		rateLimiter: NewRateLimiter(30, time.Minute),
		authToken:   authToken,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("http request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	guard := []echo.MiddlewareFunc{h.rateLimiter.Middleware(), h.requireToken}
	e.POST("/audio", h.handleAudio, guard...)
	e.POST("/text", h.handleText, guard...)
	e.POST("/transcript", h.handleTranscript, guard...)
	e.GET("/health", h.handleHealth)

	h.echo = e
	return h
}

func (h *HTTPSource) Name() string {
	return "http"
}

func (h *HTTPSource) Start(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	go func() {
		h.logger.Info("HTTP audio server starting", "addr", h.addr)
		if err := h.echo.Start(h.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("HTTP server error", "error", err)
		}
	}()

	h.running = true
	return nil
}

func (h *HTTPSource) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.echo.Shutdown(ctx); err != nil {
		h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := h.echo.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}

	h.closeOnce.Do(func() {
		close(h.audioChan)
	})
	h.running = false
	return nil
}

// NextCommand returns io.EOF once the source has been stopped.
func (h *HTTPSource) NextCommand(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case audio, ok := <-h.audioChan:
		if !ok {
			return nil, io.EOF
		}
		return audio, nil
	}
}

func (h *HTTPSource) Handler() http.Handler {
	return h.echo
}

func (h *HTTPSource) InjectAudio(data []byte) {
	select {
	case h.audioChan <- data:
	default:
	}
}

func (h *HTTPSource) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.authToken == "" {
			return next(c)
		}
		token := c.Request().Header.Get("X-Auth-Token")
		if token == "" {
			token = c.QueryParam("token")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.authToken)) != 1 {
			h.logger.Warn("unauthorized request", "remote_addr", c.RealIP(), "path", c.Path())
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		return next(c)
	}
}

func (h *HTTPSource) enqueue(c echo.Context, payload []byte, fields map[string]any) error {
	select {
	case h.audioChan <- payload:
		fields["status"] = "received"
		return c.JSON(http.StatusAccepted, fields)
	default:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "queue full, try again")
	}
}

func (h *HTTPSource) handleAudio(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAudioBytes))
	if err != nil {
		h.logger.Error("reading audio body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read body")
	}
	if len(data) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "empty audio")
	}

	h.logger.Info("received audio via HTTP", "bytes", len(data))
	return h.enqueue(c, data, map[string]any{"bytes": len(data)})
}

func (h *HTTPSource) handleText(c echo.Context) error {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxTextBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read body")
	}
	return h.queueText(c, string(data))
}

func (h *HTTPSource) handleTranscript(c echo.Context) error {
	var req transcriptRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid transcript")
	}
	return h.queueText(c, req.Text)
}

func (h *HTTPSource) queueText(c echo.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty text")
	}
	if len(text) > maxTextBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "text too long")
	}

	h.logger.Info("received text via HTTP", "text", text)
	return h.enqueue(c, []byte(domain.TextCommandPrefix+text), map[string]any{"text": text})
}

func (h *HTTPSource) handleHealth(c echo.Context) error {
	h.mu.Lock()
	running := h.running
	queueSize := len(h.audioChan)
	h.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK
	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, map[string]any{
		"status":     status,
		"running":    running,
		"queue_size": queueSize,
	})
}
