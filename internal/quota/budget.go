package quota

import (
	"context"
	"time"

	"server/internal/counter"
)

// BudgetLedger tracks cumulative provider spend for the current UTC day
// against a fixed ceiling, in KRW. The counter is global, not per identity.
//
// Check-then-charge is not atomic: a burst of concurrent requests near the
// ceiling can overshoot it by at most burst-size × cost-per-call. Replacing
// Charge with a store-side conditional decrement would close the window; the
// ledger interface is narrow enough to swap that in without touching callers.
type BudgetLedger struct {
	store       counter.Store
	dailyBudget int64
	now         func() time.Time
}

// NewBudgetLedger builds a ledger over the given counter store with a fixed
// daily budget in KRW.
func NewBudgetLedger(store counter.Store, dailyBudgetKrw int64) *BudgetLedger {
	return &BudgetLedger{store: store, dailyBudget: dailyBudgetKrw, now: time.Now}
}

// Budget returns the configured daily ceiling in KRW.
func (l *BudgetLedger) Budget() int64 {
	return l.dailyBudget
}

// Remaining reports how much of today's budget is unspent.
func (l *BudgetLedger) Remaining(ctx context.Context) (int64, error) {
	spent, err := l.store.Get(ctx, budgetKey(l.now()))
	if err != nil {
		return 0, err
	}
	return clampRemaining(l.dailyBudget, spent), nil
}

// Charge adds amountKrw to today's spend and returns the new remaining budget.
func (l *BudgetLedger) Charge(ctx context.Context, amountKrw int64) (int64, error) {
	spent, err := l.store.IncrementBy(ctx, budgetKey(l.now()), amountKrw)
	if err != nil {
		return 0, err
	}
	return clampRemaining(l.dailyBudget, spent), nil
}
