package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itapia/agent-host/src/memory/embed"
)

// Options carries backend settings resolved by the config layer.
type Options struct {
	RedisURL  string
	TTL       time.Duration
	Capacity  int
	Threshold float64
	Embedder  embed.Embedder
}

// New builds the configured cache backend. kind "" disables caching and
// returns nil; the dispatcher treats a nil cache as always-miss.
func New(ctx context.Context, kind string, opts Options) (Cache, error) {
	switch kind {
	case "":
		return nil, nil
	case "in-memory":
		return NewInMemoryCache(opts.Capacity, opts.TTL), nil
	case "redis":
		return NewRedisCache(ctx, opts.RedisURL, opts.TTL)
	case "semantic":
		if opts.Embedder == nil {
			return nil, errors.New("semantic cache requires an embedding provider")
		}
		return NewSemanticCache(opts.Embedder, opts.Threshold, opts.Capacity), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", kind)
	}
}
