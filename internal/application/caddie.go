package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"golf-caddie/internal/domain"
	"golf-caddie/internal/golf"
)

const windUnavailableReply = "I can't get a read on the wind right now."

type CaddieConfig struct {
	// DefaultCoordinates is used until a course has been geocoded.
	DefaultCoordinates domain.Coordinates
	BearingDeg         int
	DistanceBinYards   int
}

type Dependencies struct {
	Source      TranscriptSource
	Recommender Recommender
	Weather     WeatherProvider
	Geocoder    Geocoder
	Speaker     Speaker
	Notifier    Notifier
	Memory      *Memory
	Statistics  *golf.Statistics
	// Display receives what was heard; nil disables it.
	Display io.Writer
}

type Caddie struct {
	source      TranscriptSource
	recommender Recommender
	weather     WeatherProvider
	geocoder    Geocoder
	speaker     Speaker
	notifier    Notifier
	memory      *Memory
	table       *golf.Statistics
	display     io.Writer
	cfg         CaddieConfig
	logger      *slog.Logger
}

func NewCaddie(deps Dependencies, cfg CaddieConfig, logger *slog.Logger) *Caddie {
	if deps.Notifier == nil {
		deps.Notifier = &NoopNotifier{}
	}
	if deps.Memory == nil {
		deps.Memory = NewMemory(DefaultHistorySize, nil)
	}
	if deps.Display == nil {
		deps.Display = io.Discard
	}
	if cfg.DistanceBinYards <= 0 {
		cfg.DistanceBinYards = 10
	}
	return &Caddie{
		source:      deps.Source,
		recommender: deps.Recommender,
		weather:     deps.Weather,
		geocoder:    deps.Geocoder,
		speaker:     deps.Speaker,
		notifier:    deps.Notifier,
		memory:      deps.Memory,
		table:       deps.Statistics,
		display:     deps.Display,
		cfg:         cfg,
		logger:      logger.With("session_id", deps.Memory.ID()),
	}
}

func (c *Caddie) Memory() *Memory {
	return c.memory
}

// Run handles final transcripts one at a time until ctx is done or the source is exhausted.
func (c *Caddie) Run(ctx context.Context) error {
	if c.source == nil {
		return fmt.Errorf("no transcript source configured")
	}

	c.logger.Info("starting transcript source", "source", c.source.Name())
	if err := c.source.Start(ctx); err != nil {
		return fmt.Errorf("starting transcript source: %w", err)
	}
	defer c.source.Stop()

	c.logger.Info("caddie ready, listening")

	for {
		t, err := c.source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				c.logger.Info("transcript source finished")
				return nil
			}
			c.logger.Error("reading transcript", "error", err)
			continue
		}

		if !t.Final {
			c.logger.Debug("partial transcript", "text", t.Text)
			fmt.Fprintf(c.display, "... %s\n", t.Text)
			continue
		}
		if strings.TrimSpace(t.Text) == "" {
			continue
		}

		fmt.Fprintf(c.display, "You: %s\n", t.Text)
		if _, err := c.Handle(ctx, t.Text); err != nil {
			c.logger.Error("handling utterance", "error", err)
		}
	}
}

// Handle runs one request/response cycle for an utterance and returns what was said back.
func (c *Caddie) Handle(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	exchangeID := uuid.NewString()
	log := c.logger.With("exchange_id", exchangeID)
	start := time.Now()

	state := c.memory.Snapshot()
	kind := golf.DetectKind(text)
	shot := golf.ParseShot(text, state.Handicap, c.table)
	log.Info("utterance parsed",
		"kind", kind,
		"distance", optional(shot.DistanceYards),
		"lie", shot.Lie,
		"hazards", shot.Hazards,
		"club", shot.Club,
	)

	if shot.HandicapMentioned != nil {
		c.memory.SetHandicap(*shot.HandicapMentioned)
		log.Info("handicap updated", "handicap", *shot.HandicapMentioned)
	}

	if golf.MentionsCourse(text) {
		c.locateCourse(ctx, text, log)
	}

	if kind == domain.RequestWeather {
		reply := c.windReport(ctx, log)
		c.say(ctx, reply, log)
		return reply, ctx.Err()
	}

	if golf.ClearsLayout(text) {
		c.memory.ClearLayout()
		log.Debug("hole layout cleared")
	}
	if golf.DescribesLayout(text) {
		c.memory.SetLayout(text)
		log.Debug("hole layout recorded")
	}

	state = c.memory.Snapshot()
	var wind *domain.Wind
	if state.Wind != nil {
		w := golf.ResolveWind(*state.Wind, c.cfg.BearingDeg)
		wind = &w
	}

	prompt := BuildPrompt(PromptInput{
		Transcript:  text,
		Shot:        shot,
		Handicap:    state.Handicap,
		Coordinates: c.coordinates(state),
		BearingDeg:  c.cfg.BearingDeg,
		History:     state.History,
		Conditions:  state.Conditions,
		Layout:      state.Layout,
		Bins:        c.bins(shot, wind, state.Handicap, log),
		Table:       c.table,
	})

	rec := c.recommend(ctx, prompt, shot, state.Handicap, wind, log)
	c.say(ctx, rec.Text, log)

	if err := c.notifier.Notify(ctx, rec.Text); err != nil {
		log.Warn("notifying reply", "error", err)
	}
	c.memory.Remember(exchangeID, text, rec.Text)

	log.Info("reply delivered",
		"provider", rec.Provider,
		"fallback", rec.Fallback,
		"elapsed", time.Since(start),
	)
	return rec.Text, ctx.Err()
}

func (c *Caddie) locateCourse(ctx context.Context, text string, log *slog.Logger) {
	if c.geocoder == nil {
		return
	}
	name := golf.ExtractCourseName(text)
	if name == "" {
		return
	}

	coords, err := c.geocoder.Geocode(ctx, name)
	if err != nil {
		log.Warn("geocoding course failed", "query", name, "error", err)
		return
	}
	c.memory.SetLocation(domain.Location{Query: name, Coordinates: coords, ResolvedAt: time.Now()})
	log.Info("course located", "query", name, "coordinates", coords.String())

	if c.weather == nil {
		return
	}
	reading, err := c.weather.CurrentWind(ctx, coords)
	if err != nil {
		log.Warn("prefetching wind failed", "error", err)
		return
	}
	w := golf.ResolveWind(reading, c.cfg.BearingDeg)
	c.memory.SetWind(reading, w.Summary)
}

func (c *Caddie) windReport(ctx context.Context, log *slog.Logger) string {
	if c.weather == nil {
		return windUnavailableReply
	}
	coords := c.coordinates(c.memory.Snapshot())
	reading, err := c.weather.CurrentWind(ctx, coords)
	if err != nil {
		log.Warn("fetching wind failed", "coordinates", coords.String(), "error", err)
		return windUnavailableReply
	}

	w := golf.ResolveWind(reading, c.cfg.BearingDeg)
	c.memory.SetWind(reading, w.Summary)
	reply := fmt.Sprintf("Current wind: %s.", w.Summary)
	if w.Stale {
		reply += " That reading is a few minutes old."
	}
	return reply
}

func (c *Caddie) bins(shot domain.ShotRequest, wind *domain.Wind, handicap *int, log *slog.Logger) *golf.ContextBins {
	if shot.DistanceYards == nil {
		return nil
	}
	var head, cross float64
	if wind != nil {
		head, cross = wind.HeadwindMS, wind.CrosswindMS
	}
	b, err := golf.ComputeContextBins(*shot.DistanceYards, head, cross, handicap, c.cfg.DistanceBinYards, c.table)
	if err != nil {
		log.Warn("computing context bins", "error", err)
		return nil
	}
	return &b
}

func (c *Caddie) recommend(ctx context.Context, prompt string, shot domain.ShotRequest, handicap *int, wind *domain.Wind, log *slog.Logger) domain.Recommendation {
	if c.recommender != nil {
		text, err := c.recommender.Recommend(ctx, prompt)
		text = strings.TrimSpace(text)
		if err == nil && text != "" {
			return domain.Recommendation{Text: text, Provider: c.recommender.Name()}
		}
		if err == nil {
			err = fmt.Errorf("empty reply")
		}
		log.Warn("recommender failed, using rule-based advice", "provider", c.recommender.Name(), "error", err)
	}
	return golf.FallbackAdvice(shot, handicap, wind, c.table)
}

func (c *Caddie) say(ctx context.Context, text string, log *slog.Logger) {
	if c.speaker == nil {
		return
	}
	if err := c.speaker.Say(ctx, text); err != nil {
		log.Warn("speaking reply", "error", err)
	}
}

func (c *Caddie) coordinates(state SessionState) domain.Coordinates {
	if state.Location != nil {
		return state.Location.Coordinates
	}
	return c.cfg.DefaultCoordinates
}

func optional(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
