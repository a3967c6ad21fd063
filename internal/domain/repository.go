package domain

import "context"

// UserRepository is the contract against the external user store. The credit
// ledger is the only writer of the credits column; balance mutations must be
// atomic so a concurrent consume can never drive the balance negative.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Upsert creates the user if absent and returns the stored record.
	Upsert(ctx context.Context, email string) (*User, error)
	// AddCredits atomically increments the balance, creating the user with
	// the given amount when absent, and returns the new balance.
	AddCredits(ctx context.Context, email string, amount int64) (int64, error)
	// ConsumeCredits atomically decrements the balance if and only if the
	// current balance covers amount. Returns ErrInsufficientCredits (with no
	// mutation) otherwise.
	ConsumeCredits(ctx context.Context, email string, amount int64) (int64, error)
	// SetCredits overwrites the balance. Admin tooling only.
	SetCredits(ctx context.Context, email string, credits int64) error
	Delete(ctx context.Context, email string) error

	AppendCreditHistory(ctx context.Context, entry *CreditHistoryEntry) error
	ListCreditHistory(ctx context.Context, email string, limit int) ([]CreditHistoryEntry, error)
}
