package service

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryNegativeLookupCache(t *testing.T) {
	store := NewInMemoryNegativeLookupCacheStore()
	ctx := context.Background()

	hit, err := store.Get(ctx, "ns", "k1")
	if err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	if err := store.Set(ctx, "ns", "k1", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	hit, err = store.Get(ctx, "ns", "k1")
	if err != nil || !hit {
		t.Fatalf("after set: hit=%v err=%v", hit, err)
	}

	// Same key in another namespace stays cold.
	hit, err = store.Get(ctx, "other", "k1")
	if err != nil || hit {
		t.Fatalf("namespace isolation: hit=%v err=%v", hit, err)
	}
}

func TestInMemoryNegativeLookupCacheExpiry(t *testing.T) {
	store := NewInMemoryNegativeLookupCacheStore()
	ctx := context.Background()

	if err := store.Set(ctx, "ns", "k1", time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	hit, err := store.Get(ctx, "ns", "k1")
	if err != nil || hit {
		t.Fatalf("expired entry must miss: hit=%v err=%v", hit, err)
	}
}

func TestInMemoryNegativeLookupCacheZeroTTLIsNoop(t *testing.T) {
	store := NewInMemoryNegativeLookupCacheStore()
	ctx := context.Background()

	if err := store.Set(ctx, "ns", "k1", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	hit, err := store.Get(ctx, "ns", "k1")
	if err != nil || hit {
		t.Fatalf("zero TTL must not cache: hit=%v err=%v", hit, err)
	}
}

func TestInMemoryNegativeLookupCacheInvalidateNamespace(t *testing.T) {
	store := NewInMemoryNegativeLookupCacheStore()
	ctx := context.Background()

	if err := store.Set(ctx, "ns", "k1", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "keep", "k1", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := store.InvalidateNamespace(ctx, "ns"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if hit, _ := store.Get(ctx, "ns", "k1"); hit {
		t.Fatal("invalidated namespace must be empty")
	}
	if hit, _ := store.Get(ctx, "keep", "k1"); !hit {
		t.Fatal("other namespaces must survive invalidation")
	}
}

func TestNoopNegativeLookupCacheNeverHits(t *testing.T) {
	store := NewNoopNegativeLookupCacheStore()
	ctx := context.Background()

	if err := store.Set(ctx, "ns", "k1", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if hit, err := store.Get(ctx, "ns", "k1"); err != nil || hit {
		t.Fatalf("noop store must always miss: hit=%v err=%v", hit, err)
	}
}
