package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golf-caddie/config"
	"golf-caddie/internal/application"
	"golf-caddie/internal/domain"
	"golf-caddie/internal/golf"
	"golf-caddie/internal/infra/anthropic"
	"golf-caddie/internal/infra/audio"
	"golf-caddie/internal/infra/cache"
	"golf-caddie/internal/infra/gemini"
	"golf-caddie/internal/infra/nominatim"
	"golf-caddie/internal/infra/openai"
	"golf-caddie/internal/infra/openmeteo"
	"golf-caddie/internal/infra/playback"
	"golf-caddie/internal/infra/pushover"
	"golf-caddie/internal/infra/speechmatics"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer

	cache       cache.Cache
	weather     *openmeteo.Client
	geocoder    *nominatim.Client
	stats       *golf.Statistics
	memory      *application.Memory
	recommender application.Recommender
	speaker     application.Speaker
	notifier    application.Notifier

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, logger: logger, out: out}

	c, err := a.buildCache(ctx)
	if err != nil {
		return nil, err
	}
	a.cache = c

	if cfg.Weather.BaseURL != "" {
		a.weather = openmeteo.NewClientWithURL(cfg.Weather.BaseURL, c)
	} else {
		a.weather = openmeteo.NewClient(c)
	}
	if cfg.Geocode.BaseURL != "" {
		a.geocoder = nominatim.NewClientWithURL(cfg.Geocode.BaseURL, cfg.Geocode.UserAgent, c)
	} else {
		a.geocoder = nominatim.NewClient(cfg.Geocode.UserAgent, c)
	}

	stats, err := golf.LoadStatistics(cfg.Session.StatisticsPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("loading statistics: %w", err)
	}
	a.stats = stats

	a.memory = application.NewMemory(cfg.Session.HistorySize, cfg.Session.Handicap)

	if a.recommender, err = a.buildRecommender(ctx); err != nil {
		a.close()
		return nil, err
	}
	a.speaker = a.buildSpeaker()

	if cfg.Pushover.Enabled {
		a.notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		a.notifier = &application.NoopNotifier{}
	}
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("closing resource", "error", err)
		}
	}
	a.closers = nil
}

func (a *app) buildCache(ctx context.Context) (cache.Cache, error) {
	if a.cfg.Cache.Backend != "redis" {
		return cache.NewMemory(), nil
	}
	r, err := cache.NewRedis(ctx, cache.RedisOptions{
		Addr:      a.cfg.Cache.RedisAddr,
		Password:  a.cfg.Cache.RedisPassword,
		DB:        a.cfg.Cache.RedisDB,
		KeyPrefix: a.cfg.Cache.KeyPrefix,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, r.Close)
	return r, nil
}

// buildRecommender returns nil when only rule-based advice is configured.
func (a *app) buildRecommender(ctx context.Context) (application.Recommender, error) {
	var chain []application.Recommender
	for _, name := range append([]string{a.cfg.Recommender.Provider}, a.cfg.Recommender.Fallbacks...) {
		switch name {
		case "openai":
			c := a.cfg.OpenAI
			if c.BaseURL != "" {
				chain = append(chain, openai.NewChatClientWithURL(c.APIKey, c.Model, c.BaseURL))
			} else {
				chain = append(chain, openai.NewChatClient(c.APIKey, c.Model))
			}
		case "anthropic":
			c := a.cfg.Anthropic
			if c.BaseURL != "" {
				chain = append(chain, anthropic.NewClaudeClientWithURL(c.APIKey, c.Model, c.BaseURL))
			} else {
				chain = append(chain, anthropic.NewClaudeClient(c.APIKey, c.Model))
			}
		case "gemini":
			g, err := gemini.NewClientWithURL(ctx, a.cfg.Gemini.APIKey, a.cfg.Gemini.Model, a.cfg.Gemini.BaseURL)
			if err != nil {
				return nil, err
			}
			chain = append(chain, g)
		}
	}

	switch len(chain) {
	case 0:
		return nil, nil
	case 1:
		return chain[0], nil
	default:
		return application.NewChainRecommender(a.logger, chain...), nil
	}
}

func (a *app) recommenderName() string {
	if a.recommender == nil {
		return "rules"
	}
	return a.recommender.Name()
}

func (a *app) buildSpeaker() application.Speaker {
	console := application.NewConsoleSpeaker(a.out)
	if a.cfg.TTS.Provider != "speechmatics" {
		return console
	}

	tts := speechmatics.NewTTSClient(a.cfg.Speechmatics.APIKey)
	if a.cfg.Speechmatics.TTSURL != "" {
		tts = speechmatics.NewTTSClientWithURL(a.cfg.Speechmatics.APIKey, a.cfg.Speechmatics.TTSURL)
	}

	var player application.Player
	if a.cfg.TTS.Output == "file" {
		player = playback.NewFilePlayer(a.cfg.TTS.OutputDir)
	} else {
		sp, err := playback.NewSpeakerPlayer()
		if err != nil {
			a.logger.Warn("speaker unavailable, writing replies to files", "error", err, "dir", a.cfg.TTS.OutputDir)
			player = playback.NewFilePlayer(a.cfg.TTS.OutputDir)
		} else {
			player = sp
		}
	}
	return application.NewVoiceSpeaker(console, tts, player, a.logger)
}

func (a *app) stt() application.SpeechToText {
	c := a.cfg.OpenAI
	if c.APIKey == "" {
		return &application.NoopSTT{}
	}
	if c.BaseURL != "" {
		return openai.NewWhisperClientWithURL(c.APIKey, c.Language, c.BaseURL)
	}
	return openai.NewWhisperClient(c.APIKey, c.Language)
}

func (a *app) transcriptSource(stdin io.Reader) (application.TranscriptSource, error) {
	cfg := a.cfg.Audio
	silence := config.Duration(a.cfg.Session.SilenceTimeout, application.DefaultSilenceTimeout)

	switch cfg.Source {
	case "speechmatics":
		mic := audio.NewMicrophoneSource(cfg.SampleRate, a.logger)
		rt := speechmatics.NewRealtimeSource(speechmatics.RealtimeConfig{
			URL:                   a.cfg.Speechmatics.URL,
			APIKey:                a.cfg.Speechmatics.APIKey,
			Language:              a.cfg.Speechmatics.Language,
			SampleRate:            cfg.SampleRate,
			MaxDelay:              a.cfg.Speechmatics.MaxDelay,
			OperatingPoint:        a.cfg.Speechmatics.OperatingPoint,
			EndOfUtteranceSilence: a.cfg.Speechmatics.EndOfUtteranceSilence,
		}, mic, a.logger)
		return application.NewUtteranceAssembler(rt, silence, a.logger), nil
	case "microphone":
		return application.NewBatchTranscripts(audio.NewMicrophoneSource(cfg.SampleRate, a.logger), a.stt(), a.logger), nil
	case "http":
		return application.NewBatchTranscripts(audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, a.logger), a.stt(), a.logger), nil
	case "file":
		return application.NewBatchTranscripts(audio.NewFileSource(cfg.FileDir, cfg.FileOnce), a.stt(), a.logger), nil
	case "console":
		return audio.NewConsoleSource(stdin, a.out), nil
	case "scripted":
		events, err := audio.LoadScript(cfg.ScriptPath, config.Duration(cfg.ScriptDelay, 0))
		if err != nil {
			return nil, err
		}
		return application.NewUtteranceAssembler(audio.NewScriptedSource(events), silence, a.logger), nil
	}
	return nil, fmt.Errorf("unknown audio source %q", cfg.Source)
}

func (a *app) caddie(source application.TranscriptSource) *application.Caddie {
	display := a.out
	if a.cfg.Audio.Source == "console" {
		// The user's own typing is already on screen.
		display = nil
	}
	return application.NewCaddie(application.Dependencies{
		Source:      source,
		Recommender: a.recommender,
		Weather:     a.weather,
		Geocoder:    a.geocoder,
		Speaker:     a.speaker,
		Notifier:    a.notifier,
		Memory:      a.memory,
		Statistics:  a.stats,
		Display:     display,
	}, application.CaddieConfig{
		DefaultCoordinates: domain.Coordinates{Lat: a.cfg.Course.Lat, Lon: a.cfg.Course.Lon},
		BearingDeg:         a.cfg.Course.Bearing,
		DistanceBinYards:   a.cfg.Session.DistanceBinYards,
	}, a.logger)
}

// locateConfiguredCourse geocodes course.name so the round starts with a known location.
func (a *app) locateConfiguredCourse(ctx context.Context) {
	name := a.cfg.Course.Name
	if name == "" {
		return
	}
	coords, err := a.geocoder.Geocode(ctx, name)
	if err != nil {
		a.logger.Warn("geocoding configured course", "course", name, "error", err)
		return
	}
	a.memory.SetLocation(domain.Location{Query: name, Coordinates: coords, ResolvedAt: time.Now()})
	a.logger.Info("course located", "course", name, "coordinates", coords.String())
}

func (a *app) startConditions(ctx context.Context) {
	monitor := application.NewConditionsMonitor(a.weather, a.memory, a.cfg.Course.Bearing, a.logger)
	if err := monitor.Refresh(ctx); err != nil {
		a.logger.Warn("initial conditions refresh failed", "error", err)
	}
	monitor.Start(ctx, config.Duration(a.cfg.Weather.RefreshInterval, application.DefaultConditionsInterval))
}
