package domain

import (
	"fmt"
	"time"
)

type Coordinates struct {
	Lat float64
	Lon float64
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
}

type Location struct {
	Query       string
	Coordinates Coordinates
	ResolvedAt  time.Time
}

// WindReading is the raw observation: speed in m/s, direction the wind
// blows FROM in meteorological degrees.
type WindReading struct {
	SpeedMS      float64
	DirectionDeg int
	FetchedAt    time.Time
	Stale        bool
}

// Wind is a reading resolved against a target bearing.
type Wind struct {
	SpeedMS      float64
	DirectionDeg int
	HeadwindMS   float64
	CrosswindMS  float64
	Summary      string
	Stale        bool
}
