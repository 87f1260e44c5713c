package accounts

import (
	"time"

	"github.com/google/uuid"
)

// Account matches the accounts table schema. Credits is the authoritative
// server-side balance; clients hold only a mirror of it.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Credits      int       `json:"credits"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login"`
}
