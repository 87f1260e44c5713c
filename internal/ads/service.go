package ads

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pixelpalette/backend/internal/api"
	"github.com/pixelpalette/backend/internal/entitlement"
	"github.com/pixelpalette/backend/internal/events"
	"github.com/pixelpalette/backend/internal/ledger"
)

// Service runs the watch-an-ad flow: availability check, load, show, then
// the atomic claim. Credits are only granted after the provider reports a
// completed view.
type Service struct {
	provider    Provider
	entitlement *entitlement.Service
	publisher   *events.Publisher
}

func NewService(provider Provider, entitlementSvc *entitlement.Service, publisher *events.Publisher) *Service {
	return &Service{provider: provider, entitlement: entitlementSvc, publisher: publisher}
}

// Watch plays an ad of the given kind for the account and grants the reward
// on completion. Returns the confirmed balance after the grant.
func (s *Service) Watch(ctx context.Context, accountID uuid.UUID, kind entitlement.Kind) (int, error) {
	// Advisory pre-check so we do not play a full ad just to deny the
	// claim. The guarded increment inside ClaimAndCredit remains the
	// authority under concurrency.
	counters, err := s.entitlement.Counters(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if !s.entitlement.CanClaim(counters, kind) {
		return 0, entitlement.ErrLimitReached
	}

	if err := s.provider.Load(ctx, kind); err != nil {
		return 0, err
	}

	completed, err := s.provider.Show(ctx, kind)
	if err != nil {
		return 0, err
	}
	if !completed {
		return 0, api.ErrAdNotCompleted
	}

	balance, err := s.entitlement.ClaimAndCredit(ctx, accountID, kind)
	if err != nil {
		return 0, err
	}

	if s.publisher != nil {
		reason := ledger.ReasonAdInterstitial
		if kind == entitlement.KindRewarded {
			reason = ledger.ReasonAdRewarded
		}
		s.publisher.TryPublishCredit(ctx, accountID, reason, s.entitlement.Reward(kind), balance)
	}

	slog.Info("ad reward granted",
		"account_id", accountID, "kind", kind, "reward", s.entitlement.Reward(kind), "balance", balance)
	return balance, nil
}
