package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Entry reasons. Every balance mutation writes exactly one entry.
const (
	ReasonRegistrationSeed = "registration_seed"
	ReasonAdInterstitial   = "ad_reward_interstitial"
	ReasonAdRewarded       = "ad_reward_rewarded"
	ReasonGenerationSpend  = "generation_spend"
)

// Entry is an append-only record of a single credit balance mutation,
// carrying the balance observed immediately after the delta was applied.
type Entry struct {
	ID           uuid.UUID `json:"id"`
	AccountID    uuid.UUID `json:"account_id"`
	Reason       string    `json:"reason"`
	Delta        int       `json:"delta"`
	BalanceAfter int       `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}
