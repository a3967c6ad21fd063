package quota

import (
	"context"
	"time"

	"server/internal/counter"
)

// AllowanceLedger tracks how many free generations a client identity has
// used today. The identity is the caller's network address, which is
// unstable and spoofable; that weakness is accepted for the free tier.
//
// Consume carries no compare-and-set guard: two requests racing past the
// Remaining pre-check can push the counter past the limit by the number of
// requests in flight. Accepted semantics, see the decision engine.
type AllowanceLedger struct {
	store counter.Store
	limit int64
	now   func() time.Time
}

// NewAllowanceLedger builds a ledger over the given counter store with a
// fixed per-day free limit.
func NewAllowanceLedger(store counter.Store, dailyLimit int64) *AllowanceLedger {
	return &AllowanceLedger{store: store, limit: dailyLimit, now: time.Now}
}

// Limit returns the configured daily free limit.
func (l *AllowanceLedger) Limit() int64 {
	return l.limit
}

// Remaining reports how many free generations the identity has left today.
func (l *AllowanceLedger) Remaining(ctx context.Context, identity string) (int64, error) {
	used, err := l.store.Get(ctx, allowanceKey(identity, l.now()))
	if err != nil {
		return 0, err
	}
	return clampRemaining(l.limit, used), nil
}

// Consume records one generation for the identity and returns the remaining
// allowance derived from the new count.
func (l *AllowanceLedger) Consume(ctx context.Context, identity string) (int64, error) {
	used, err := l.store.Increment(ctx, allowanceKey(identity, l.now()))
	if err != nil {
		return 0, err
	}
	return clampRemaining(l.limit, used), nil
}

func clampRemaining(limit, used int64) int64 {
	if remaining := limit - used; remaining > 0 {
		return remaining
	}
	return 0
}
