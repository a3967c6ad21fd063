package quota

import "context"

// Path identifies which ledger pays for an allowed generation.
type Path string

const (
	// PathCredits charges the purchased credit balance and bypasses the
	// daily budget entirely.
	PathCredits Path = "credits"
	// PathFree charges the per-identity free allowance and the global
	// daily budget together.
	PathFree Path = "free"
)

// DenyReason is the machine-readable admission failure surfaced to clients.
type DenyReason string

const (
	DenyFreeLimitExceeded DenyReason = "FREE_LIMIT_EXCEEDED"
	DenyBudgetExceeded    DenyReason = "BUDGET_EXCEEDED"
)

// Decision is the outcome of the admission pre-check. Denials are values,
// not errors, so callers cannot skip the check by ignoring an error path.
type Decision struct {
	Allowed   bool
	Reason    DenyReason
	Path      Path
	Limit     int64
	Remaining int64
}

// CommitResult reports the post-charge state returned to the caller.
type CommitResult struct {
	// Remaining is credits left on the credit path, free generations left
	// on the free path.
	Remaining          int64
	BudgetRemainingKrw int64
}

// Status is the read-only quota view served by GET /quota.
type Status struct {
	Path               Path
	Remaining          int64
	Limit              int64
	Credits            int64
	BudgetRemainingKrw int64
}

// Engine decides, for each generation request, whether it is admitted and
// which ledger pays for it. Requests for the same identity are not mutually
// excluded: two of them can pass Check before either Commits, over-admitting
// by at most the number of requests in flight. That window is the price of
// running without per-identity locks; a store-side check-and-decrement would
// remove it without changing any call site.
type Engine struct {
	allowance      *AllowanceLedger
	budget         *BudgetLedger
	credits        *CreditLedger
	costPerCallKrw int64
}

// NewEngine composes the three ledgers.
func NewEngine(allowance *AllowanceLedger, budget *BudgetLedger, credits *CreditLedger, costPerCallKrw int64) *Engine {
	return &Engine{
		allowance:      allowance,
		budget:         budget,
		credits:        credits,
		costPerCallKrw: costPerCallKrw,
	}
}

// Check runs the admission pre-check. A logged-in caller holding credits is
// admitted on the credit path regardless of the free allowance and budget.
// Everyone else is admitted on the free path only while both the identity's
// daily allowance and the global budget hold out.
func (e *Engine) Check(ctx context.Context, email, clientIdentity string) (Decision, error) {
	balance, err := e.credits.Balance(ctx, email)
	if err != nil {
		return Decision{}, err
	}
	if balance > 0 {
		return Decision{
			Allowed:   true,
			Path:      PathCredits,
			Limit:     balance,
			Remaining: balance,
		}, nil
	}

	remaining, err := e.allowance.Remaining(ctx, clientIdentity)
	if err != nil {
		return Decision{}, err
	}
	if remaining <= 0 {
		return Decision{Path: PathFree, Reason: DenyFreeLimitExceeded, Limit: e.allowance.Limit()}, nil
	}

	budgetRemaining, err := e.budget.Remaining(ctx)
	if err != nil {
		return Decision{}, err
	}
	if budgetRemaining < e.costPerCallKrw {
		return Decision{Path: PathFree, Reason: DenyBudgetExceeded, Limit: e.allowance.Limit(), Remaining: remaining}, nil
	}

	return Decision{
		Allowed:   true,
		Path:      PathFree,
		Limit:     e.allowance.Limit(),
		Remaining: remaining,
	}, nil
}

// Commit charges the ledger chosen by the decision. It must only be called
// after the generation provider produced a usable image.
//
// On the credit path the consume can still lose a race with a concurrent
// consumer draining the balance after Check; that surfaces as
// domain.ErrInsufficientCredits and the generated image is abandoned.
// On the free path the increments cannot fail in isolation, so there is no
// failure path beyond store errors.
func (e *Engine) Commit(ctx context.Context, d Decision, email, clientIdentity string) (CommitResult, error) {
	switch d.Path {
	case PathCredits:
		balance, err := e.credits.Consume(ctx, email, CreditUnit)
		if err != nil {
			return CommitResult{}, err
		}
		budgetRemaining, err := e.budget.Remaining(ctx)
		if err != nil {
			return CommitResult{}, err
		}
		return CommitResult{Remaining: balance, BudgetRemainingKrw: budgetRemaining}, nil
	default:
		remaining, err := e.allowance.Consume(ctx, clientIdentity)
		if err != nil {
			return CommitResult{}, err
		}
		budgetRemaining, err := e.budget.Charge(ctx, e.costPerCallKrw)
		if err != nil {
			return CommitResult{}, err
		}
		return CommitResult{Remaining: remaining, BudgetRemainingKrw: budgetRemaining}, nil
	}
}

// Snapshot reports the caller's current standing without consuming anything.
func (e *Engine) Snapshot(ctx context.Context, email, clientIdentity string) (Status, error) {
	budgetRemaining, err := e.budget.Remaining(ctx)
	if err != nil {
		return Status{}, err
	}

	balance, err := e.credits.Balance(ctx, email)
	if err != nil {
		return Status{}, err
	}
	if balance > 0 {
		return Status{
			Path:               PathCredits,
			Remaining:          balance,
			Limit:              balance,
			Credits:            balance,
			BudgetRemainingKrw: budgetRemaining,
		}, nil
	}

	remaining, err := e.allowance.Remaining(ctx, clientIdentity)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Path:               PathFree,
		Remaining:          remaining,
		Limit:              e.allowance.Limit(),
		BudgetRemainingKrw: budgetRemaining,
	}, nil
}

// BudgetRemaining exposes the budget ledger's remaining figure for the
// public budget endpoint.
func (e *Engine) BudgetRemaining(ctx context.Context) (int64, error) {
	return e.budget.Remaining(ctx)
}

// CostPerCall returns the configured per-generation cost in KRW.
func (e *Engine) CostPerCall() int64 {
	return e.costPerCallKrw
}

// FreeLimit returns the configured daily free limit.
func (e *Engine) FreeLimit() int64 {
	return e.allowance.Limit()
}
