package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/pixelpalette/backend/internal/accounts"
	"github.com/pixelpalette/backend/internal/entitlement"
	"github.com/pixelpalette/backend/internal/events"
)

// Manager keeps per-account session mirrors and reacts to auth state and
// credit events. Observing a sign-in or registration refreshes the mirror,
// which runs the daily counter reset for that account as a side effect;
// credit events overwrite the mirrored balance with the confirmed value.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	accounts    *accounts.Service
	entitlement *entitlement.Service
	consumerMgr *events.ConsumerManager
}

func NewManager(accountsSvc *accounts.Service, entitlementSvc *entitlement.Service, consumerMgr *events.ConsumerManager) *Manager {
	return &Manager{
		sessions:    make(map[uuid.UUID]*Session),
		accounts:    accountsSvc,
		entitlement: entitlementSvc,
		consumerMgr: consumerMgr,
	}
}

// Acquire returns the session mirror for the account, building it on first
// use.
func (m *Manager) Acquire(ctx context.Context, accountID uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[accountID]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}
	return m.Refresh(ctx, accountID)
}

// Current returns a copy of the session mirror for reading, rebuilding it
// first when the mirrored counters belong to an earlier calendar day. The
// copy keeps readers off the live struct the consume loop mutates.
func (m *Manager) Current(ctx context.Context, accountID uuid.UUID) (*Session, error) {
	s, err := m.Acquire(ctx, accountID)
	if err != nil || s == nil {
		return nil, err
	}

	m.mu.RLock()
	cp := *s
	m.mu.RUnlock()

	if m.entitlement.StaleCounters(&cp.Counters) {
		s, err = m.Refresh(ctx, accountID)
		if err != nil || s == nil {
			return nil, err
		}
		m.mu.RLock()
		cp = *s
		m.mu.RUnlock()
	}
	return &cp, nil
}

// Refresh rebuilds the mirror from confirmed server state. The counters
// fetch resets them first if they belong to an earlier calendar day.
func (m *Manager) Refresh(ctx context.Context, accountID uuid.UUID) (*Session, error) {
	account, err := m.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		m.Invalidate(accountID)
		return nil, nil
	}

	counters, err := m.entitlement.Counters(ctx, accountID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		AccountID:   accountID,
		Email:       account.Email,
		Username:    account.Username,
		Credits:     account.Credits,
		Counters:    *counters,
		RefreshedAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[accountID] = s
	m.mu.Unlock()
	return s, nil
}

// UpdateCredits overwrites the mirrored balance with a confirmed server
// value. No-op when the account has no live session.
func (m *Manager) UpdateCredits(accountID uuid.UUID, balance int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[accountID]; ok {
		s.Credits = balance
	}
}

// Invalidate drops the mirror for the account.
func (m *Manager) Invalidate(accountID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, accountID)
}

// Start begins the auth event consume loop. Blocks until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) error {
	consumer, err := m.consumerMgr.SessionConsumer(ctx, "session-manager")
	if err != nil {
		return err
	}

	slog.Info("session manager started", "consumer", "session-manager")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(events.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("session manager: fetching events", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			m.handleEvent(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (m *Manager) handleEvent(ctx context.Context, msg jetstream.Msg) {
	if msg.Subject() == events.SubjectCredit {
		m.handleCreditEvent(msg)
		return
	}

	var event events.AuthStateEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		slog.Error("session manager: unmarshaling event", "error", err)
		_ = msg.Nak()
		return
	}

	switch event.State {
	case events.AuthStateRegistered, events.AuthStateSignedIn:
		if _, err := m.Refresh(ctx, event.AccountID); err != nil {
			slog.Error("session manager: refreshing session", "account_id", event.AccountID, "error", err)
			_ = msg.Nak()
			return
		}
	case events.AuthStateSignedOut, events.AuthStateDeleted:
		m.Invalidate(event.AccountID)
	default:
		slog.Warn("session manager: unknown auth state", "state", event.State)
	}

	_ = msg.Ack()
}

// handleCreditEvent overwrites the mirrored balance with the confirmed
// value carried by the event.
func (m *Manager) handleCreditEvent(msg jetstream.Msg) {
	var event events.CreditEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		slog.Error("session manager: unmarshaling credit event", "error", err)
		_ = msg.Nak()
		return
	}

	m.UpdateCredits(event.AccountID, event.Balance)
	_ = msg.Ack()
}
