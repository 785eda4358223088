package arena

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is the storage a SelectionCache runs on. Keeping it injectable
// lets unit tests use the in-memory form and lets several arena
// sessions coexist in one process without sharing ambient state.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// SelectionCache memoizes judge auto-selection per contestant set so
// the roster is not re-ranked on every round of a run.
type SelectionCache struct {
	kv KV
}

func NewSelectionCache(kv KV) *SelectionCache {
	return &SelectionCache{kv: kv}
}

func selectionKey(contestantIDs []string) string {
	ids := make([]string, 0, len(contestantIDs))
	for _, id := range contestantIDs {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			ids = append(ids, id)
		}
	}
	return "arena:judge_selection:" + strings.Join(ids, "|")
}

// Lookup returns the cached judge id for this contestant set, if any.
func (c *SelectionCache) Lookup(ctx context.Context, contestantIDs []string) (string, bool) {
	if c == nil || c.kv == nil {
		return "", false
	}
	id, ok, err := c.kv.Get(ctx, selectionKey(contestantIDs))
	if err != nil || !ok {
		return "", false
	}
	return id, true
}

// Store records a judge selection for this contestant set. Failures
// are swallowed: the cache is an optimization, not a dependency.
func (c *SelectionCache) Store(ctx context.Context, contestantIDs []string, judgeID string) {
	if c == nil || c.kv == nil || judgeID == "" {
		return
	}
	_ = c.kv.Set(ctx, selectionKey(contestantIDs), judgeID)
}

// Invalidate drops the cached selection, e.g. after the roster
// changes.
func (c *SelectionCache) Invalidate(ctx context.Context, contestantIDs []string) {
	if c == nil || c.kv == nil {
		return
	}
	_ = c.kv.Remove(ctx, selectionKey(contestantIDs))
}

// RedisKV backs a SelectionCache with Redis.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

var _ KV = (*RedisKV)(nil)

func NewRedisKV(client *redis.Client, ttl time.Duration) *RedisKV {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisKV{client: client, ttl: ttl}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

func (r *RedisKV) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// MemoryKV is the in-process KV used by tests and single-session
// deployments without Redis.
type MemoryKV struct {
	mu    sync.RWMutex
	items map[string]string
}

var _ KV = (*MemoryKV)(nil)

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: map[string]string{}}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.items[key]
	return val, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
