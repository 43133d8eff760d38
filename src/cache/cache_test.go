package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestInMemoryCacheLookupAfterStore(t *testing.T) {
	c := NewInMemoryCache(4, time.Hour)
	ctx := context.Background()

	if err := c.Store(ctx, "Context:\n\nUser Question:\nprice of FPT", "123.4"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, ok, err := c.Lookup(ctx, "Context:\n\nUser Question:\nprice of FPT")
	if err != nil || !ok {
		t.Fatalf("Lookup: ok=%v err=%v", ok, err)
	}
	if got != "123.4" {
		t.Errorf("value = %q", got)
	}

	if _, ok, _ := c.Lookup(ctx, "a different question"); ok {
		t.Errorf("unexpected hit for different key material")
	}
}

func TestInMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewInMemoryCache(2, 0)
	ctx := context.Background()

	c.Store(ctx, "k1", "v1")
	c.Store(ctx, "k2", "v2")
	c.Lookup(ctx, "k1") // refresh k1
	c.Store(ctx, "k3", "v3")

	if _, ok, _ := c.Lookup(ctx, "k2"); ok {
		t.Errorf("k2 should have been evicted")
	}
	if _, ok, _ := c.Lookup(ctx, "k1"); !ok {
		t.Errorf("k1 was evicted despite being recently used")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestInMemoryCacheTTLExpiry(t *testing.T) {
	c := NewInMemoryCache(4, 10*time.Millisecond)
	ctx := context.Background()

	c.Store(ctx, "k", "v")
	time.Sleep(20 * time.Millisecond)

	if _, ok, _ := c.Lookup(ctx, "k"); ok {
		t.Errorf("entry survived past its TTL")
	}
}

func TestInMemoryCacheOverwrite(t *testing.T) {
	c := NewInMemoryCache(4, 0)
	ctx := context.Background()

	c.Store(ctx, "k", "old")
	c.Store(ctx, "k", "new")

	got, ok, _ := c.Lookup(ctx, "k")
	if !ok || got != "new" {
		t.Errorf("got %q ok=%v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestHashKeyIsStable(t *testing.T) {
	a := HashKey("material")
	b := HashKey("material")
	c := HashKey("other material")
	if a != b {
		t.Errorf("same material hashed differently")
	}
	if a == c {
		t.Errorf("different material collided")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d", len(a))
	}
}

// axisEmbedder gives deterministic vectors for similarity tests.
type axisEmbedder struct{}

func (axisEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := []float32{0.05, 0.05}
	if strings.Contains(text, "price") {
		vec[0] = 1
	}
	if strings.Contains(text, "news") {
		vec[1] = 1
	}
	return vec, nil
}

func TestSemanticCacheHitsOnRephrasing(t *testing.T) {
	c := NewSemanticCache(axisEmbedder{}, 0.9, 16)
	ctx := context.Background()

	if err := c.Store(ctx, "what is the price of FPT", "123.4"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, ok, err := c.Lookup(ctx, "current price for FPT please")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || got != "123.4" {
		t.Errorf("got %q ok=%v, want rephrased hit", got, ok)
	}

	if _, ok, _ = c.Lookup(ctx, "latest market news"); ok {
		t.Errorf("unrelated query hit the cache")
	}
}

func TestNewDisabledCacheIsNil(t *testing.T) {
	c, err := New(context.Background(), "", Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c != nil {
		t.Errorf("disabled cache should be nil")
	}
}

func TestNewUnsupportedKind(t *testing.T) {
	if _, err := New(context.Background(), "memcached", Options{}); err == nil {
		t.Error("expected error for unsupported cache type")
	}
}

func TestNewSemanticRequiresEmbedder(t *testing.T) {
	if _, err := New(context.Background(), "semantic", Options{}); err == nil {
		t.Error("expected error without embedder")
	}
}
