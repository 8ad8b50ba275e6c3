package memorystore

import (
	"context"
	"sync"
	"time"
)

type kvEntry struct {
	value    []byte
	deadline int64 // unix nanos; 0 means no expiry
}

// KV is an in-memory key-value store with TTL support, for development and
// single-process deployments. Expired entries are dropped lazily on access
// and swept opportunistically on writes.
type KV struct {
	mu      sync.Mutex
	entries map[string]kvEntry
	sweepAt int64
}

func NewKV() *KV {
	return &KV{entries: make(map[string]kvEntry)}
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx
	now := time.Now().UnixNano()
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		return nil, false, nil
	}
	if e.deadline != 0 && now >= e.deadline {
		delete(k.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = ctx
	now := time.Now().UnixNano()
	var deadline int64
	if ttl > 0 {
		deadline = now + ttl.Nanoseconds()
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if now >= k.sweepAt {
		for key, e := range k.entries {
			if e.deadline != 0 && now >= e.deadline {
				delete(k.entries, key)
			}
		}
		k.sweepAt = now + time.Minute.Nanoseconds()
	}
	k.entries[key] = kvEntry{value: append([]byte(nil), value...), deadline: deadline}
	return nil
}

func (k *KV) Del(ctx context.Context, key string) error {
	_ = ctx
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.entries, key)
	return nil
}
