package counter

import (
	"context"
	"time"
)

// TTL applied to a key on its first write. Counters are date-scoped, so a
// 24h expiry guarantees stale keys disappear on their own.
const TTL = 24 * time.Hour

// Store is a keyed counter with atomic increments and expire-on-first-write
// semantics. Keys encode a UTC date, so a counter is logically fresh each day:
// the previous day's key either expired or was never created.
type Store interface {
	// Increment adds one to the counter, creating it at zero first. The
	// first write of a key's lifetime arms the 24h expiry.
	Increment(ctx context.Context, key string) (int64, error)
	// IncrementBy behaves like Increment with an arbitrary positive delta.
	IncrementBy(ctx context.Context, key string, amount int64) (int64, error)
	// Get returns the current count, or zero for an absent key.
	Get(ctx context.Context, key string) (int64, error)
}
