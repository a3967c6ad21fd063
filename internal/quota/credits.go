package quota

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/domain"
)

// CreditUnit is the number of purchased credits consumed per generation.
const CreditUnit = 10

// CreditLedger manages per-email purchased credit balances in the user
// store. Balances are durable, never expire, and must stay non-negative
// under concurrent consumption; the repository enforces that with an atomic
// conditional decrement.
type CreditLedger struct {
	users  domain.UserRepository
	logger zerolog.Logger
}

// NewCreditLedger wraps the user repository.
func NewCreditLedger(users domain.UserRepository, logger zerolog.Logger) *CreditLedger {
	return &CreditLedger{users: users, logger: logger}
}

// Balance returns the credit balance for email, or zero when the email is
// empty or no record exists.
func (l *CreditLedger) Balance(ctx context.Context, email string) (int64, error) {
	if strings.TrimSpace(email) == "" {
		return 0, nil
	}
	user, err := l.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return user.Credits, nil
}

// Add credits the account, creating it when absent, and appends a purchase
// entry to the history. Returns the new balance.
func (l *CreditLedger) Add(ctx context.Context, email string, amount int64, details map[string]any) (int64, error) {
	balance, err := l.users.AddCredits(ctx, email, amount)
	if err != nil {
		return 0, err
	}
	l.appendHistory(ctx, email, domain.CreditActionPurchase, amount, details)
	return balance, nil
}

// Consume debits amount credits, returning the new balance. When the balance
// does not cover amount it returns domain.ErrInsufficientCredits and leaves
// both the balance and the history untouched.
func (l *CreditLedger) Consume(ctx context.Context, email string, amount int64) (int64, error) {
	balance, err := l.users.ConsumeCredits(ctx, email, amount)
	if err != nil {
		return 0, err
	}
	l.appendHistory(ctx, email, domain.CreditActionUse, -amount, map[string]any{
		"action": "image_generation",
		"cost":   amount,
	})
	return balance, nil
}

// appendHistory records a ledger entry. The history is display-only, so a
// failed append must not undo or fail the balance change that preceded it.
func (l *CreditLedger) appendHistory(ctx context.Context, email string, action domain.CreditAction, amount int64, details map[string]any) {
	entry := &domain.CreditHistoryEntry{
		ID:        uuid.NewString(),
		Email:     email,
		Action:    action,
		Amount:    amount,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.users.AppendCreditHistory(ctx, entry); err != nil {
		l.logger.Error().Err(err).Str("email", email).Str("action", string(action)).Msg("credit history append failed")
	}
}
