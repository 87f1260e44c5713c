package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/pixelpalette/backend/internal/entitlement"
)

// Session is an in-memory mirror of an account's entitlement state. The
// stored balance is optimistic: it tracks the last confirmed server value
// and is only ever overwritten by confirmed values, never by client input.
type Session struct {
	AccountID   uuid.UUID            `json:"account_id"`
	Email       string               `json:"email"`
	Username    string               `json:"username"`
	Credits     int                  `json:"credits"`
	Counters    entitlement.Counters `json:"counters"`
	RefreshedAt time.Time            `json:"refreshed_at"`
}
