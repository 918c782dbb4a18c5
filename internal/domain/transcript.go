package domain

import "time"

// Transcript is one STT event. Partials are for display only; EndOfUtterance
// events carry no text and mark the end of a spoken request.
type Transcript struct {
	Text           string
	Final          bool
	EndOfUtterance bool
	ReceivedAt     time.Time
}

type Exchange struct {
	ID    string
	Said  string
	Reply string
	At    time.Time
}

type Recommendation struct {
	Text     string
	Provider string
	Fallback bool
}
