package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

// EnsureSchema creates the users and credit_history tables when absent.
func (r *UserRepositoryPG) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS users (
    email      TEXT PRIMARY KEY,
    credits    BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS credit_history (
    id         UUID PRIMARY KEY,
    email      TEXT NOT NULL,
    action     TEXT NOT NULL,
    amount     BIGINT NOT NULL,
    details    JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS credit_history_email_created_idx
    ON credit_history (email, created_at DESC);
`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// GetByEmail fetches a user record.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT email, credits, created_at, updated_at FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Upsert creates the user with zero credits if missing and returns the
// current record either way.
func (r *UserRepositoryPG) Upsert(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO users (email)
VALUES ($1)
ON CONFLICT (email) DO UPDATE
SET updated_at = NOW()
RETURNING email, credits, created_at, updated_at;
`, email)
	return scanUser(row)
}

// AddCredits atomically increments the balance, creating the row on first
// purchase, and returns the new balance.
func (r *UserRepositoryPG) AddCredits(ctx context.Context, email string, amount int64) (int64, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO users (email, credits)
VALUES ($1, $2)
ON CONFLICT (email) DO UPDATE
SET credits = users.credits + EXCLUDED.credits,
    updated_at = NOW()
RETURNING credits;
`, email, amount)

	var balance int64
	if err := row.Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// ConsumeCredits decrements the balance only when it covers the amount. The
// WHERE guard makes concurrent consumers serialize on the row; a short
// balance leaves the record untouched and returns ErrInsufficientCredits.
func (r *UserRepositoryPG) ConsumeCredits(ctx context.Context, email string, amount int64) (int64, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE users
SET credits = credits - $2,
    updated_at = NOW()
WHERE email = $1 AND credits >= $2
RETURNING credits;
`, email, amount)

	var balance int64
	if err := row.Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrInsufficientCredits
		}
		return 0, err
	}
	return balance, nil
}

// SetCredits forces the balance to an absolute value, creating the row when
// absent. Admin surface only.
func (r *UserRepositoryPG) SetCredits(ctx context.Context, email string, credits int64) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO users (email, credits)
VALUES ($1, $2)
ON CONFLICT (email) DO UPDATE
SET credits = EXCLUDED.credits,
    updated_at = NOW();
`, email, credits)
	return err
}

// Delete removes the user row. The history rows stay for audit.
func (r *UserRepositoryPG) Delete(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	return err
}

// AppendCreditHistory writes one append-only ledger row.
func (r *UserRepositoryPG) AppendCreditHistory(ctx context.Context, entry *domain.CreditHistoryEntry) error {
	var details []byte
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("encode history details: %w", err)
		}
		details = raw
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO credit_history (id, email, action, amount, details, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`, entry.ID, entry.Email, entry.Action, entry.Amount, details, entry.CreatedAt)
	return err
}

// ListCreditHistory returns the newest entries first.
func (r *UserRepositoryPG) ListCreditHistory(ctx context.Context, email string, limit int) ([]domain.CreditHistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, email, action, amount, details, created_at
FROM credit_history
WHERE email = $1
ORDER BY created_at DESC
LIMIT $2;
`, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CreditHistoryEntry
	for rows.Next() {
		var entry domain.CreditHistoryEntry
		var details []byte
		if err := rows.Scan(&entry.ID, &entry.Email, &entry.Action, &entry.Amount, &details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("decode history details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.Email, &u.Credits, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
