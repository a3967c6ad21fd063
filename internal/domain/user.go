package domain

import "time"

// User is an authenticated account keyed by email. Credits are purchased
// units that never expire; ten credits pay for one generation.
type User struct {
	Email     string
	Credits   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreditAction enumerates the kinds of entries recorded in the credit history.
type CreditAction string

const (
	CreditActionPurchase   CreditAction = "purchase"
	CreditActionUse        CreditAction = "use"
	CreditActionAdminReset CreditAction = "admin_reset"
	CreditActionRefund     CreditAction = "refund"
)

// CreditHistoryEntry is an immutable, append-only record of a credit balance
// mutation. Amount is signed: positive for purchases, negative for consumption.
type CreditHistoryEntry struct {
	ID        string
	Email     string
	Action    CreditAction
	Amount    int64
	Details   map[string]any
	CreatedAt time.Time
}
