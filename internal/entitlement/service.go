package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pixelpalette/backend/internal/config"
	"github.com/pixelpalette/backend/internal/ledger"
	"github.com/pixelpalette/backend/internal/metrics"
)

// Service is the entitlement gate: it decides whether an account may claim
// an ad reward today and performs the claim atomically.
type Service struct {
	repo Repository
	cfg  config.CreditsConfig
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo Repository, cfg config.CreditsConfig) (*Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("resolving credits timezone: %w", err)
	}
	return &Service{repo: repo, cfg: cfg, loc: loc, now: time.Now}, nil
}

// Cap returns the daily watch cap for the given ad kind.
func (s *Service) Cap(kind Kind) int {
	if kind == KindRewarded {
		return s.cfg.RewardedDayCap
	}
	return s.cfg.InterstitialDayCap
}

// Reward returns the credit grant for completing an ad of the given kind.
func (s *Service) Reward(kind Kind) int {
	if kind == KindRewarded {
		return s.cfg.RewardedReward
	}
	return s.cfg.InterstitialReward
}

// CanClaim reports whether the counters still have headroom for kind today.
// Advisory only: the authoritative check is the guarded increment inside
// ClaimAndCredit.
func (s *Service) CanClaim(c *Counters, kind Kind) bool {
	return c.Count(kind) < s.Cap(kind)
}

// Counters returns the account's ad counters for the current day, resetting
// them first if the stored values belong to an earlier calendar day.
func (s *Service) Counters(ctx context.Context, accountID uuid.UUID) (*Counters, error) {
	if _, err := s.ResetIfStale(ctx, accountID); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreate(ctx, accountID)
}

// StaleCounters reports whether the counters' last reset belongs to an
// earlier calendar day than now in the configured timezone.
func (s *Service) StaleCounters(c *Counters) bool {
	return !sameCalendarDay(c.LastReset, s.now(), s.loc)
}

// ResetIfStale zeroes the counters when the last reset happened on a
// different calendar day than now, in the configured timezone. An elapsed
// duration under 24h still resets if midnight passed in between. Returns
// whether this call performed a reset.
func (s *Service) ResetIfStale(ctx context.Context, accountID uuid.UUID) (bool, error) {
	c, err := s.repo.GetOrCreate(ctx, accountID)
	if err != nil {
		return false, err
	}
	if sameCalendarDay(c.LastReset, s.now(), s.loc) {
		return false, nil
	}

	did, err := s.repo.Reset(ctx, accountID, c.LastReset)
	if err != nil {
		return false, err
	}
	if did {
		slog.Debug("reset daily ad counters", "account_id", accountID)
	}
	return did, nil
}

// ClaimAndCredit performs a completed-ad claim: daily reset check, guarded
// counter increment, credit grant and ledger entry in one transaction. The
// returned balance is the confirmed server value.
func (s *Service) ClaimAndCredit(ctx context.Context, accountID uuid.UUID, kind Kind) (int, error) {
	if _, err := s.ResetIfStale(ctx, accountID); err != nil {
		return 0, err
	}

	balance, err := s.repo.ClaimAndCredit(ctx, accountID, kind, s.Cap(kind), s.Reward(kind), claimReason(kind))
	if err != nil {
		metrics.AdClaimsTotal.WithLabelValues(string(kind), "denied").Inc()
		return 0, err
	}

	metrics.AdClaimsTotal.WithLabelValues(string(kind), "granted").Inc()
	metrics.CreditsTotal.WithLabelValues("granted").Add(float64(s.Reward(kind)))
	return balance, nil
}

func claimReason(kind Kind) string {
	if kind == KindRewarded {
		return ledger.ReasonAdRewarded
	}
	return ledger.ReasonAdInterstitial
}

// sameCalendarDay compares only the year, month and day fields in loc. A
// claim at 23:59 followed by one at 00:01 crosses the boundary even though
// barely any time elapsed.
func sameCalendarDay(a, b time.Time, loc *time.Location) bool {
	al, bl := a.In(loc), b.In(loc)
	ay, am, ad := al.Date()
	by, bm, bd := bl.Date()
	return ay == by && am == bm && ad == bd
}
