package application

import (
	"context"

	"golf-caddie/internal/domain"
)

// Recommender completes a caddie prompt into the spoken advice.
type Recommender interface {
	Recommend(ctx context.Context, prompt string) (string, error)
	Name() string
}

// WeatherProvider returns the current wind at a point. Implementations may serve a
// cached reading marked Stale, and return domain.ErrUnavailable when they have nothing.
type WeatherProvider interface {
	CurrentWind(ctx context.Context, at domain.Coordinates) (domain.WindReading, error)
}

// Geocoder resolves a place name. Returns domain.ErrNoResults when nothing matches.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (domain.Coordinates, error)
}

// TranscriptSource yields transcript events. Next returns io.EOF when the source is exhausted.
type TranscriptSource interface {
	Start(ctx context.Context) error
	Stop() error
	Next(ctx context.Context) (domain.Transcript, error)
	Name() string
}
