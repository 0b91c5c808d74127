package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisCacheForTest(t *testing.T) (*RedisNegativeLookupCacheStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisNegativeLookupCacheStore(client, "test:negcache"), mr
}

func TestRedisNegativeLookupCacheSetGet(t *testing.T) {
	store, _ := newRedisCacheForTest(t)
	ctx := context.Background()

	hit, err := store.Get(ctx, "apikey_resolve", "fp1")
	if err != nil || hit {
		t.Fatalf("cold cache: hit=%v err=%v", hit, err)
	}

	if err := store.Set(ctx, "apikey_resolve", "fp1", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	hit, err = store.Get(ctx, "apikey_resolve", "fp1")
	if err != nil || !hit {
		t.Fatalf("after set: hit=%v err=%v", hit, err)
	}
}

func TestRedisNegativeLookupCacheTTL(t *testing.T) {
	store, mr := newRedisCacheForTest(t)
	ctx := context.Background()

	if err := store.Set(ctx, "apikey_resolve", "fp1", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	hit, err := store.Get(ctx, "apikey_resolve", "fp1")
	if err != nil || hit {
		t.Fatalf("entry past TTL must miss: hit=%v err=%v", hit, err)
	}
}

func TestRedisNegativeLookupCacheInvalidateNamespace(t *testing.T) {
	store, _ := newRedisCacheForTest(t)
	ctx := context.Background()

	for _, fp := range []string{"fp1", "fp2", "fp3"} {
		if err := store.Set(ctx, "apikey_resolve", fp, time.Minute); err != nil {
			t.Fatalf("set %s: %v", fp, err)
		}
	}
	if err := store.Set(ctx, "other", "fp1", time.Minute); err != nil {
		t.Fatalf("set other: %v", err)
	}

	if err := store.InvalidateNamespace(ctx, "apikey_resolve"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	for _, fp := range []string{"fp1", "fp2", "fp3"} {
		if hit, _ := store.Get(ctx, "apikey_resolve", fp); hit {
			t.Fatalf("%s survived namespace invalidation", fp)
		}
	}
	if hit, _ := store.Get(ctx, "other", "fp1"); !hit {
		t.Fatal("unrelated namespace was flushed")
	}
}

func TestRedisNegativeLookupCacheStoresOnlyDigests(t *testing.T) {
	store, mr := newRedisCacheForTest(t)
	ctx := context.Background()

	const fingerprint = "raw-material-that-must-not-appear"
	if err := store.Set(ctx, "apikey_resolve", fingerprint, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	for _, k := range mr.Keys() {
		if strings.Contains(k, fingerprint) {
			t.Fatalf("redis key leaks lookup material: %s", k)
		}
	}
}

func TestRedisNegativeLookupCacheNilClient(t *testing.T) {
	store := NewRedisNegativeLookupCacheStore(nil, "")
	ctx := context.Background()

	if err := store.Set(ctx, "ns", "k", time.Minute); err != nil {
		t.Fatalf("set with nil client: %v", err)
	}
	if hit, err := store.Get(ctx, "ns", "k"); err != nil || hit {
		t.Fatalf("nil client must behave like a miss: hit=%v err=%v", hit, err)
	}
	if err := store.InvalidateNamespace(ctx, "ns"); err != nil {
		t.Fatalf("invalidate with nil client: %v", err)
	}
}
