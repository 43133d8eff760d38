package cache

import (
	"context"
	"sync"

	"github.com/itapia/agent-host/src/memory"
	"github.com/itapia/agent-host/src/memory/embed"
)

// DefaultSimilarityThreshold is the cosine similarity a stored entry must
// reach to count as a hit.
const DefaultSimilarityThreshold = 0.92

// SemanticCache matches queries whose key material is close in embedding
// space rather than byte-identical, so rephrasings of an answered question
// still hit. Entries live in process memory; staleness is an accepted
// tradeoff of the content-addressed design.
type SemanticCache struct {
	embedder  embed.Embedder
	threshold float64
	capacity  int

	mu      sync.RWMutex
	entries []semanticEntry
}

type semanticEntry struct {
	vec   []float32
	value string
}

// NewSemanticCache creates a similarity cache. threshold <= 0 uses the
// default; capacity <= 0 defaults to 512.
func NewSemanticCache(embedder embed.Embedder, threshold float64, capacity int) *SemanticCache {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	if capacity <= 0 {
		capacity = 512
	}
	return &SemanticCache{embedder: embedder, threshold: threshold, capacity: capacity}
}

func (c *SemanticCache) Lookup(ctx context.Context, key string) (string, bool, error) {
	vec, err := c.embedder.Embed(ctx, key)
	if err != nil {
		return "", false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	best := -1.0
	var bestValue string
	for _, ent := range c.entries {
		if sim := memory.CosineSimilarity(vec, ent.vec); sim > best {
			best = sim
			bestValue = ent.value
		}
	}
	if best >= c.threshold {
		return bestValue, true, nil
	}
	return "", false, nil
}

func (c *SemanticCache) Store(ctx context.Context, key, value string) error {
	vec, err := c.embedder.Embed(ctx, key)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, semanticEntry{vec: vec, value: value})
	if len(c.entries) > c.capacity {
		c.entries = c.entries[len(c.entries)-c.capacity:]
	}
	return nil
}

var _ Cache = (*SemanticCache)(nil)
