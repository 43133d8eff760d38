package memory

import (
	"context"
	"fmt"
	"time"
)

// StoreOptions carries backend connection settings resolved by the config
// layer.
type StoreOptions struct {
	RedisURL      string
	RedisTTL      time.Duration
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string
}

// NewHistoryStore builds the configured history backend. Unsupported kinds
// are a configuration error surfaced at startup.
func NewHistoryStore(ctx context.Context, kind string, opts StoreOptions) (HistoryStore, error) {
	switch kind {
	case "in-memory", "":
		return NewInMemoryHistory(), nil
	case "redis":
		return NewRedisHistory(ctx, opts.RedisURL, opts.RedisTTL)
	case "postgres":
		store, err := NewPostgresHistory(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := store.CreateSchema(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("create history schema: %w", err)
		}
		return store, nil
	case "mongo", "mongodb":
		return NewMongoHistory(ctx, opts.MongoURI, opts.MongoDatabase, "sessions")
	default:
		return nil, fmt.Errorf("unsupported memory type: %s", kind)
	}
}
