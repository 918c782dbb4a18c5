package domain

type RequestKind string

const (
	RequestShot    RequestKind = "shot"
	RequestWeather RequestKind = "weather"
)

type Lie string

const (
	LieFairway Lie = "fairway"
	LieRough   Lie = "rough"
	LieSand    Lie = "sand"
	LieTee     Lie = "tee"
)

// TextCommandPrefix marks an audio payload that already carries text.
const TextCommandPrefix = "__TEXT__:"

// ShotRequest is what the rule parser pulls out of one utterance.
// Nil pointers mean the utterance did not mention the value.
type ShotRequest struct {
	RawText           string
	Kind              RequestKind
	DistanceYards     *int
	Lie               Lie
	Hazards           []string
	Club              string
	HandicapMentioned *int
	ValidationWarning string
}

func (r ShotRequest) HasDistance() bool {
	return r.DistanceYards != nil
}

func IntPtr(v int) *int {
	return &v
}
