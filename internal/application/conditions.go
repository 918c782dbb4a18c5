package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golf-caddie/internal/golf"
)

const DefaultConditionsInterval = 5 * time.Minute

// ConditionsMonitor keeps the session's wind reading fresh once a course is known.
type ConditionsMonitor struct {
	weather    WeatherProvider
	memory     *Memory
	bearingDeg int
	logger     *slog.Logger
}

func NewConditionsMonitor(weather WeatherProvider, memory *Memory, bearingDeg int, logger *slog.Logger) *ConditionsMonitor {
	return &ConditionsMonitor{weather: weather, memory: memory, bearingDeg: bearingDeg, logger: logger}
}

// Refresh fetches wind for the remembered location. It does nothing until a location is known.
func (m *ConditionsMonitor) Refresh(ctx context.Context) error {
	loc := m.memory.Snapshot().Location
	if loc == nil {
		return nil
	}

	reading, err := m.weather.CurrentWind(ctx, loc.Coordinates)
	if err != nil {
		return fmt.Errorf("refreshing wind for %s: %w", loc.Query, err)
	}
	wind := golf.ResolveWind(reading, m.bearingDeg)
	m.memory.SetWind(reading, wind.Summary)
	m.logger.Debug("conditions refreshed", "location", loc.Query, "wind", wind.Summary, "stale", reading.Stale)
	return nil
}

func (m *ConditionsMonitor) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultConditionsInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.Refresh(ctx); err != nil {
					m.logger.Warn("conditions refresh failed", "error", err)
				}
			}
		}
	}()
}
