package quota

import (
	"context"
	"time"

	"server/internal/counter"
)

// PurchaseMarker remembers which client identities completed a purchase
// today. The marker rides the counter store: the first increment of the
// day's paid key creates it with the standard 24h expiry.
type PurchaseMarker struct {
	store counter.Store
	now   func() time.Time
}

func NewPurchaseMarker(store counter.Store) *PurchaseMarker {
	return &PurchaseMarker{store: store, now: time.Now}
}

// Mark flags the identity as having purchased today.
func (m *PurchaseMarker) Mark(ctx context.Context, identity string) error {
	_, err := m.store.Increment(ctx, paidKey(identity, m.now()))
	return err
}

// Purchased reports whether the identity purchased today.
func (m *PurchaseMarker) Purchased(ctx context.Context, identity string) (bool, error) {
	n, err := m.store.Get(ctx, paidKey(identity, m.now()))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
