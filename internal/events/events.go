package events

import (
	"time"

	"github.com/google/uuid"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// Stream name.
const StreamEvents = "PALETTE_EVENTS"

// Subject constants.
const (
	SubjectAuthState = "palette.events.auth"
	SubjectCredit    = "palette.events.credit"
)

// Auth state transitions.
const (
	AuthStateRegistered = "registered"
	AuthStateSignedIn   = "signed_in"
	AuthStateSignedOut  = "signed_out"
	AuthStateDeleted    = "deleted"
)

// AuthStateEvent is published whenever an account's authentication state
// changes. The session manager consumes these to refresh its mirror and run
// the daily counter reset for the observed account.
type AuthStateEvent struct {
	AccountID uuid.UUID `json:"account_id"`
	Email     string    `json:"email,omitempty"`
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// CreditEvent is published after a confirmed balance mutation so listeners
// can track spend without polling the ledger.
type CreditEvent struct {
	AccountID uuid.UUID `json:"account_id"`
	Reason    string    `json:"reason"`
	Delta     int       `json:"delta"`
	Balance   int       `json:"balance"`
	Timestamp time.Time `json:"timestamp"`
}
