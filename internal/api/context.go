package api

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const accountIDKey contextKey = "account_id"

// WithAccountID stores the authenticated account ID on the context. Set by
// the auth middleware after token validation.
func WithAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDKey, id)
}

// AccountIDFromContext returns the authenticated account ID, if any.
func AccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(accountIDKey).(uuid.UUID)
	return id, ok
}
