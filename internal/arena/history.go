package arena

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// HistoryStore persists the append-only ScoreRound sequence for one
// arena session. The stored form is a flat JSON array (no schema
// versioning beyond the ScoreRound field set); running totals are
// always recomputed from it, never stored.
type HistoryStore interface {
	Load(ctx context.Context, runID string) ([]ScoreRound, error)
	Save(ctx context.Context, runID string, history []ScoreRound) error
	Clear(ctx context.Context, runID string) error
}

const defaultHistoryTTL = 30 * 24 * time.Hour

// RedisHistory keeps score history in Redis, one key per run.
type RedisHistory struct {
	client *redis.Client
	ttl    time.Duration
}

var _ HistoryStore = (*RedisHistory)(nil)

func NewRedisHistory(client *redis.Client, ttl time.Duration) *RedisHistory {
	if ttl <= 0 {
		ttl = defaultHistoryTTL
	}
	return &RedisHistory{client: client, ttl: ttl}
}

func (h *RedisHistory) key(runID string) string {
	return "arena:score_history:" + runID
}

func (h *RedisHistory) Load(ctx context.Context, runID string) ([]ScoreRound, error) {
	data, err := h.client.Get(ctx, h.key(runID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []ScoreRound{}, nil
		}
		return nil, err
	}
	var history []ScoreRound
	if err := json.Unmarshal(data, &history); err != nil {
		// A corrupt blob must not block the session; start fresh.
		return []ScoreRound{}, nil
	}
	return history, nil
}

func (h *RedisHistory) Save(ctx context.Context, runID string, history []ScoreRound) error {
	data, err := json.Marshal(history)
	if err != nil {
		return err
	}
	return h.client.Set(ctx, h.key(runID), data, h.ttl).Err()
}

func (h *RedisHistory) Clear(ctx context.Context, runID string) error {
	return h.client.Del(ctx, h.key(runID)).Err()
}
