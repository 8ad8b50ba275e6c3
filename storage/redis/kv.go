package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is a Redis-backed ephemeral key-value store with TTL support. An
// optional prefix namespaces smskit keys on a shared Redis.
type KV struct {
	rdb    *redis.Client
	prefix string
}

func NewKV(rdb *redis.Client) *KV {
	return &KV{rdb: rdb}
}

// NewKVWithPrefix prepends prefix to every key.
func NewKVWithPrefix(rdb *redis.Client, prefix string) *KV {
	return &KV{rdb: rdb, prefix: prefix}
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := k.rdb.Get(ctx, k.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return k.rdb.Set(ctx, k.prefix+key, value, ttl).Err()
}

func (k *KV) Del(ctx context.Context, key string) error {
	return k.rdb.Del(ctx, k.prefix+key).Err()
}
