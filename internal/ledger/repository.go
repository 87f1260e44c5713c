package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles credit_ledger PostgreSQL operations.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO credit_ledger (id, account_id, reason, delta, balance_after)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, e.ID, e.AccountID, e.Reason, e.Delta, e.BalanceAfter).Scan(&e.CreatedAt)
}

// CreateTx inserts a ledger entry inside the given transaction. Used by the
// entitlement claim so the counter increment, credit grant and ledger row
// commit or roll back together.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return tx.QueryRow(ctx, `
		INSERT INTO credit_ledger (id, account_id, reason, delta, balance_after)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, e.ID, e.AccountID, e.Reason, e.Delta, e.BalanceAfter).Scan(&e.CreatedAt)
}

func (r *Repository) ListByAccountID(ctx context.Context, accountID uuid.UUID, limit int) ([]*Entry, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, reason, delta, balance_after, created_at
		FROM credit_ledger WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ledger entries: %w", err)
	}
	defer rows.Close()

	var list []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Reason, &e.Delta, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
