package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pixelpalette/backend/internal/ledger"
)

// ErrLimitReached is returned when a claim would exceed the daily cap. It is
// a gated outcome, not a fault.
var ErrLimitReached = errors.New("daily ad limit reached")

type Repository interface {
	GetOrCreate(ctx context.Context, accountID uuid.UUID) (*Counters, error)
	// Reset zeroes both counters, guarded on the last_reset value the caller
	// observed so concurrent resets apply at most once. Returns whether this
	// call performed the reset.
	Reset(ctx context.Context, accountID uuid.UUID, observedLastReset time.Time) (bool, error)
	// ClaimAndCredit atomically increments the counter for kind (guarded by
	// cap), grants the reward and writes the ledger entry in one
	// transaction. Returns the confirmed new balance, or ErrLimitReached
	// without granting anything.
	ClaimAndCredit(ctx context.Context, accountID uuid.UUID, kind Kind, cap, reward int, reason string) (int, error)
}

type postgresRepository struct {
	pool       *pgxpool.Pool
	ledgerRepo *ledger.Repository
}

func NewRepository(pool *pgxpool.Pool, ledgerRepo *ledger.Repository) Repository {
	return &postgresRepository{pool: pool, ledgerRepo: ledgerRepo}
}

// counterColumn maps a Kind onto its column. Kinds are a closed enum, so the
// interpolation below never sees caller input.
func counterColumn(kind Kind) string {
	if kind == KindRewarded {
		return "rewarded"
	}
	return "interstitial"
}

func (r *postgresRepository) GetOrCreate(ctx context.Context, accountID uuid.UUID) (*Counters, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ad_counters (account_id) VALUES ($1) ON CONFLICT (account_id) DO NOTHING`, accountID)
	if err != nil {
		return nil, fmt.Errorf("ensuring ad counters: %w", err)
	}

	var c Counters
	err = r.pool.QueryRow(ctx,
		`SELECT account_id, rewarded, interstitial, last_reset, updated_at
		 FROM ad_counters WHERE account_id = $1`, accountID,
	).Scan(&c.AccountID, &c.Rewarded, &c.Interstitial, &c.LastReset, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("fetching ad counters: %w", err)
	}
	return &c, nil
}

func (r *postgresRepository) Reset(ctx context.Context, accountID uuid.UUID, observedLastReset time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE ad_counters
		 SET rewarded = 0,
		     interstitial = 0,
		     last_reset = NOW(),
		     updated_at = NOW()
		 WHERE account_id = $1 AND last_reset = $2`, accountID, observedLastReset)
	if err != nil {
		return false, fmt.Errorf("resetting ad counters: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *postgresRepository) ClaimAndCredit(ctx context.Context, accountID uuid.UUID, kind Kind, cap, reward int, reason string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning claim transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	col := counterColumn(kind)

	// Guarded increment: the cap check happens in the same statement as the
	// increment, so two concurrent claims at cap-1 cannot both pass.
	tag, err := tx.Exec(ctx, fmt.Sprintf(
		`UPDATE ad_counters
		 SET %s = %s + 1, updated_at = NOW()
		 WHERE account_id = $1 AND %s < $2`, col, col, col), accountID, cap)
	if err != nil {
		return 0, fmt.Errorf("incrementing %s counter: %w", kind, err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrLimitReached
	}

	var balance int
	err = tx.QueryRow(ctx,
		`UPDATE accounts SET credits = credits + $2 WHERE id = $1 RETURNING credits`,
		accountID, reward).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("granting reward: %w", err)
	}

	entry := &ledger.Entry{
		AccountID:    accountID,
		Reason:       reason,
		Delta:        reward,
		BalanceAfter: balance,
	}
	if err := r.ledgerRepo.CreateTx(ctx, tx, entry); err != nil {
		return 0, fmt.Errorf("recording claim ledger entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing claim transaction: %w", err)
	}
	return balance, nil
}
