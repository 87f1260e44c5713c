package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// ConsumerManager creates durable consumers on the palette events stream.
type ConsumerManager struct {
	js jetstream.JetStream
}

func NewConsumerManager(js jetstream.JetStream) *ConsumerManager {
	return &ConsumerManager{js: js}
}

// SessionConsumer returns a durable consumer over the auth state and credit
// subjects, the two feeds the session manager mirrors. Redelivery stops
// after a few attempts so one poison event cannot wedge the refresh loop.
func (cm *ConsumerManager) SessionConsumer(ctx context.Context, durable string) (jetstream.Consumer, error) {
	consumer, err := cm.js.CreateOrUpdateConsumer(ctx, StreamEvents, jetstream.ConsumerConfig{
		Durable:        durable,
		FilterSubjects: []string{SubjectAuthState, SubjectCredit},
		AckPolicy:      jetstream.AckExplicitPolicy,
		AckWait:        30 * time.Second,
		MaxDeliver:     5,
	})
	if err != nil {
		return nil, fmt.Errorf("ensuring consumer %s on %s: %w", durable, StreamEvents, err)
	}
	return consumer, nil
}
