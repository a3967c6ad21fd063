package counter

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreIncrementAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if n, err := s.Get(ctx, "quota:20240102:1.2.3.4"); err != nil || n != 0 {
		t.Fatalf("Get on absent key = (%d, %v), want (0, nil)", n, err)
	}

	for i := int64(1); i <= 3; i++ {
		n, err := s.Increment(ctx, "quota:20240102:1.2.3.4")
		if err != nil {
			t.Fatalf("Increment: %v", err)
		}
		if n != i {
			t.Fatalf("Increment #%d = %d, want %d", i, n, i)
		}
	}

	if n, _ := s.Get(ctx, "quota:20240102:1.2.3.4"); n != 3 {
		t.Fatalf("Get after increments = %d, want 3", n)
	}
}

func TestMemoryStoreIncrementBy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if n, err := s.IncrementBy(ctx, "budget:20240102", 54); err != nil || n != 54 {
		t.Fatalf("IncrementBy = (%d, %v), want (54, nil)", n, err)
	}
	if n, _ := s.IncrementBy(ctx, "budget:20240102", 54); n != 108 {
		t.Fatalf("second IncrementBy = %d, want 108", n)
	}
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, _ = s.Increment(ctx, "quota:20240102:a")
	_, _ = s.Increment(ctx, "quota:20240102:a")
	_, _ = s.Increment(ctx, "quota:20240102:b")

	if n, _ := s.Get(ctx, "quota:20240102:a"); n != 2 {
		t.Fatalf("key a = %d, want 2", n)
	}
	if n, _ := s.Get(ctx, "quota:20240102:b"); n != 1 {
		t.Fatalf("key b = %d, want 1", n)
	}
}

func TestMemoryStoreResetsAtMidnightUTC(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	current := time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return current }

	if n, _ := s.Increment(ctx, "quota:20240102:1.2.3.4"); n != 1 {
		t.Fatalf("count before rollover = %d, want 1", n)
	}

	current = time.Date(2024, 1, 3, 0, 30, 0, 0, time.UTC)

	if n, _ := s.Get(ctx, "quota:20240102:1.2.3.4"); n != 0 {
		t.Fatalf("Get after rollover = %d, want 0", n)
	}
	if n, _ := s.Increment(ctx, "quota:20240102:1.2.3.4"); n != 1 {
		t.Fatalf("Increment after rollover = %d, want 1", n)
	}
}
