package kv

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, "greeting", "hello", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, found, err := s.Get(ctx, "greeting")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found || value != "hello" {
		t.Fatalf("Get = (%q, %v), want (hello, true)", value, found)
	}
}

func TestMemoryStoreMissingKey(t *testing.T) {
	s := NewMemoryStore()
	_, found, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Fatal("Get found a key that was never set")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	if err := s.Set(ctx, "session", "abc", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s.now = func() time.Time { return base.Add(30 * time.Second) }
	if _, found, _ := s.Get(ctx, "session"); !found {
		t.Fatal("value expired before its ttl")
	}

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, found, _ := s.Get(ctx, "session"); found {
		t.Fatal("value survived past its ttl")
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.Set(ctx, "k", "v1", 0)
	_ = s.Set(ctx, "k", "v2", 0)

	value, _, _ := s.Get(ctx, "k")
	if value != "v2" {
		t.Fatalf("Get = %q, want v2", value)
	}
}
