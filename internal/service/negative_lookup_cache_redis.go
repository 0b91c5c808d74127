package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisNegativeLookupCacheStore shares negative resolution results across
// replicas. Keys under one namespace are tracked in a set so the whole
// namespace can be dropped when a new credential is issued.
type RedisNegativeLookupCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisNegativeLookupCacheStore(client redis.UniversalClient, prefix string) *RedisNegativeLookupCacheStore {
	if prefix == "" {
		prefix = "silentauth:negcache"
	}
	return &RedisNegativeLookupCacheStore{client: client, prefix: prefix}
}

func (s *RedisNegativeLookupCacheStore) Get(ctx context.Context, namespace, key string) (bool, error) {
	if s.client == nil {
		return false, nil
	}
	_, err := s.client.Get(ctx, s.dataKey(namespace, key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisNegativeLookupCacheStore) Set(ctx context.Context, namespace, key string, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	dataKey := s.dataKey(namespace, key)
	namespaceIndex := s.namespaceIndexKey(namespace)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, dataKey, "1", ttl)
	pipe.SAdd(ctx, namespaceIndex, dataKey)
	pipe.Expire(ctx, namespaceIndex, ttl+time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisNegativeLookupCacheStore) InvalidateNamespace(ctx context.Context, namespace string) error {
	if s.client == nil {
		return nil
	}
	namespaceIndex := s.namespaceIndexKey(namespace)
	keys, err := s.client.SMembers(ctx, namespaceIndex).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := s.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, namespaceIndex)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisNegativeLookupCacheStore) dataKey(namespace, key string) string {
	return fmt.Sprintf("%s:data:%s:%s", s.prefix, normalizeCacheToken(namespace), hashCacheKey(key))
}

func (s *RedisNegativeLookupCacheStore) namespaceIndexKey(namespace string) string {
	return fmt.Sprintf("%s:index:%s", s.prefix, normalizeCacheToken(namespace))
}

func normalizeCacheToken(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// hashCacheKey keeps raw lookup material out of redis; only a digest is
// stored even though callers already pass fingerprints.
func hashCacheKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
