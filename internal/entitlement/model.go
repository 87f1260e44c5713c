package entitlement

import (
	"time"

	"github.com/google/uuid"
)

// Kind is an ad format eligible for a daily-capped credit reward.
type Kind string

const (
	KindRewarded     Kind = "rewarded"
	KindInterstitial Kind = "interstitial"
)

// ParseKind validates a kind coming off the wire.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindRewarded:
		return KindRewarded, true
	case KindInterstitial:
		return KindInterstitial, true
	}
	return "", false
}

// Counters matches the ad_counters table schema: per-account watch counts
// for the current calendar day plus the timestamp of the last daily reset.
type Counters struct {
	AccountID    uuid.UUID `json:"account_id"`
	Rewarded     int       `json:"rewarded"`
	Interstitial int       `json:"interstitial"`
	LastReset    time.Time `json:"last_reset"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Count returns the watch count for the given kind.
func (c *Counters) Count(kind Kind) int {
	if kind == KindRewarded {
		return c.Rewarded
	}
	return c.Interstitial
}
