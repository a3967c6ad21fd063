package counter

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback used when no shared counter service
// is configured. Counts reset at the next UTC midnight rather than expiring.
//
// It is only correct for a single running instance: counters live in process
// memory, so a multi-instance deployment sees one independent set of counters
// per instance and loses global consistency. This is an accepted limitation
// of the fallback, not something the store papers over.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

// NewMemoryStore creates an empty in-process counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Increment(ctx context.Context, key string) (int64, error) {
	return s.IncrementBy(ctx, key, 1)
}

func (s *MemoryStore) IncrementBy(_ context.Context, key string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(key)
	e.count += amount
	return e.count, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return 0, nil
	}
	if s.now().After(e.resetAt) {
		return 0, nil
	}
	return e.count, nil
}

// entry returns the live entry for key, rolling it over if its window passed.
// Caller holds the lock.
func (s *MemoryStore) entry(key string) *memoryEntry {
	now := s.now()
	e, ok := s.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &memoryEntry{resetAt: nextMidnightUTC(now)}
		s.entries[key] = e
	}
	return e
}

func nextMidnightUTC(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

var _ Store = (*MemoryStore)(nil)
