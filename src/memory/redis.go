package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisHistory stores each session's turns as a redis list of JSON entries,
// refreshed with a TTL on every append. Redis serializes list pushes
// per key, which gives the per-session append ordering for free.
type RedisHistory struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisHistory(ctx context.Context, url string, ttl time.Duration) (*RedisHistory, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisHistory{client: client, ttl: ttl}, nil
}

func historyKey(sessionID string) string { return "chat_history:" + sessionID }

func (s *RedisHistory) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]any, 0, len(turns))
	for _, t := range turns {
		encoded, err := json.Marshal(t)
		if err != nil {
			return err
		}
		values = append(values, encoded)
	}
	key := historyKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisHistory) History(ctx context.Context, sessionID string) ([]Turn, error) {
	raw, err := s.client.LRange(ctx, historyKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	turns := make([]Turn, 0, len(raw))
	for _, entry := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(entry), &t); err != nil {
			return nil, fmt.Errorf("decode stored turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Close releases the redis connection pool.
func (s *RedisHistory) Close() error { return s.client.Close() }

var _ HistoryStore = (*RedisHistory)(nil)
