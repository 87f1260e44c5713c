package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	// ApplyCreditDelta issues a relative increment against the stored balance
	// and returns the confirmed new balance.
	ApplyCreditDelta(ctx context.Context, id uuid.UUID, delta int) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (id, email, username, password_hash, credits, created_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		account.ID, account.Email, account.Username, account.PasswordHash,
		account.Credits, account.CreatedAt, account.LastLogin)
	if err != nil {
		return fmt.Errorf("inserting account: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := `SELECT id, email, username, password_hash, credits, created_at, last_login
	          FROM accounts WHERE id = $1`

	account := &Account{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&account.ID, &account.Email, &account.Username, &account.PasswordHash,
		&account.Credits, &account.CreatedAt, &account.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying account by id: %w", err)
	}
	return account, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT id, email, username, password_hash, credits, created_at, last_login
	          FROM accounts WHERE email = $1`

	account := &Account{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&account.ID, &account.Email, &account.Username, &account.PasswordHash,
		&account.Credits, &account.CreatedAt, &account.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying account by email: %w", err)
	}
	return account, nil
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET username = $2 WHERE id = $1`, id, username)
	if err != nil {
		return fmt.Errorf("updating username: %w", err)
	}
	return nil
}

func (r *postgresRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

func (r *postgresRepository) ApplyCreditDelta(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	var balance int
	err := r.pool.QueryRow(ctx,
		`UPDATE accounts SET credits = credits + $2 WHERE id = $1 RETURNING credits`,
		id, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("applying credit delta: account %s not found", id)
		}
		return 0, fmt.Errorf("applying credit delta: %w", err)
	}
	return balance, nil
}

// Delete performs a hard delete. Counters and ledger rows go with the
// account via ON DELETE CASCADE.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return nil
}
