package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishAuthState publishes an auth state transition for an account.
func (p *Publisher) PublishAuthState(ctx context.Context, accountID uuid.UUID, email, state string) error {
	return p.publish(ctx, SubjectAuthState, AuthStateEvent{
		AccountID: accountID,
		Email:     email,
		State:     state,
		Timestamp: time.Now(),
	})
}

// PublishCredit publishes a confirmed balance mutation.
func (p *Publisher) PublishCredit(ctx context.Context, accountID uuid.UUID, reason string, delta, balance int) error {
	return p.publish(ctx, SubjectCredit, CreditEvent{
		AccountID: accountID,
		Reason:    reason,
		Delta:     delta,
		Balance:   balance,
		Timestamp: time.Now(),
	})
}

// TryPublishAuthState publishes and logs instead of failing. Auth state
// events are advisory; the API call that triggered them should not fail if
// the broker is briefly unreachable.
func (p *Publisher) TryPublishAuthState(ctx context.Context, accountID uuid.UUID, email, state string) {
	if err := p.PublishAuthState(ctx, accountID, email, state); err != nil {
		slog.Warn("publishing auth state event failed", "account_id", accountID, "state", state, "error", err)
	}
}

// TryPublishCredit publishes and logs instead of failing, for the same
// reason as TryPublishAuthState: the ledger row is the durable record, the
// event is a notification.
func (p *Publisher) TryPublishCredit(ctx context.Context, accountID uuid.UUID, reason string, delta, balance int) {
	if err := p.PublishCredit(ctx, accountID, reason, delta, balance); err != nil {
		slog.Warn("publishing credit event failed", "account_id", accountID, "reason", reason, "error", err)
	}
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
