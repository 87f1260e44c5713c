package speech

const (
	minRate  = 0.5
	maxRate  = 2.0
	minPitch = 0.5
	maxPitch = 2.0
)

// Utterance is one synthesis request. Rate and pitch are multipliers around
// 1.0 and get clamped into the supported range rather than rejected.
type Utterance struct {
	Text    string  `json:"text" validate:"required"`
	VoiceID string  `json:"voice_id,omitempty"`
	Rate    float64 `json:"rate,omitempty"`
	Pitch   float64 `json:"pitch,omitempty"`
}

// Clamp fills defaults and pulls out-of-range values back to the nearest
// supported bound.
func (u *Utterance) Clamp() {
	if u.Rate == 0 {
		u.Rate = 1.0
	}
	if u.Pitch == 0 {
		u.Pitch = 1.0
	}
	u.Rate = clamp(u.Rate, minRate, maxRate)
	u.Pitch = clamp(u.Pitch, minPitch, maxPitch)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
