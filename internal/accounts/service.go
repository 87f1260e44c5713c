package accounts

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pixelpalette/backend/internal/ledger"
	"github.com/pixelpalette/backend/internal/metrics"
)

// LedgerWriter records balance mutations; satisfied by *ledger.Repository.
type LedgerWriter interface {
	Create(ctx context.Context, e *ledger.Entry) error
}

// CreditAnnouncer broadcasts confirmed balance mutations; satisfied by
// *events.Publisher. May be nil.
type CreditAnnouncer interface {
	TryPublishCredit(ctx context.Context, accountID uuid.UUID, reason string, delta, balance int)
}

type Service struct {
	repo      Repository
	ledger    LedgerWriter
	announcer CreditAnnouncer
}

func NewService(repo Repository, ledgerRepo LedgerWriter, announcer CreditAnnouncer) *Service {
	return &Service{repo: repo, ledger: ledgerRepo, announcer: announcer}
}

// Create registers a new account seeded with the starting credit balance and
// records the seed in the ledger.
func (s *Service) Create(ctx context.Context, email, username, passwordHash string, startingCredits int) (*Account, error) {
	now := time.Now()
	account := &Account{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Credits:      startingCredits,
		CreatedAt:    now,
		LastLogin:    now,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.recordEntry(ctx, account.ID, ledger.ReasonRegistrationSeed, startingCredits, startingCredits)
	s.announce(ctx, account.ID, ledger.ReasonRegistrationSeed, startingCredits, startingCredits)
	return account, nil
}

// ApplyDelta applies a signed credit delta. The atomic remote increment runs
// first; the returned balance is the confirmed server value, which callers
// use to update their session mirror. No client-side value is trusted.
func (s *Service) ApplyDelta(ctx context.Context, id uuid.UUID, delta int, reason string) (int, error) {
	balance, err := s.repo.ApplyCreditDelta(ctx, id, delta)
	if err != nil {
		return 0, err
	}

	s.recordEntry(ctx, id, reason, delta, balance)
	s.announce(ctx, id, reason, delta, balance)

	if delta >= 0 {
		metrics.CreditsTotal.WithLabelValues("granted").Add(float64(delta))
	} else {
		metrics.CreditsTotal.WithLabelValues("spent").Add(float64(-delta))
	}
	return balance, nil
}

func (s *Service) announce(ctx context.Context, id uuid.UUID, reason string, delta, balance int) {
	if s.announcer != nil {
		s.announcer.TryPublishCredit(ctx, id, reason, delta, balance)
	}
}

func (s *Service) recordEntry(ctx context.Context, id uuid.UUID, reason string, delta, balance int) {
	entry := &ledger.Entry{
		AccountID:    id,
		Reason:       reason,
		Delta:        delta,
		BalanceAfter: balance,
	}
	if err := s.ledger.Create(ctx, entry); err != nil {
		// The balance mutation already committed; a missing audit row is
		// not worth failing the user action over.
		slog.Warn("recording ledger entry failed", "account_id", id, "reason", reason, "error", err)
	}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

func (s *Service) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	return s.repo.UpdateUsername(ctx, id, username)
}

func (s *Service) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	return s.repo.TouchLastLogin(ctx, id)
}

// Delete removes the account record and everything keyed on it. Hard delete:
// there is no soft-delete marker, a deleted account is gone.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
