// Package embed provides pluggable text-embedding providers for memory
// retrieval and the semantic cache.
package embed

import "context"

// Embedder is a pluggable text-embedding provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DummyEmbedder produces deterministic embeddings without network access.
// Used in tests and as the explicit "none" provider.
type DummyEmbedder struct{}

func (DummyEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return DummyEmbedding(text), nil
}

// DummyEmbedding folds the input bytes into a fixed-width vector. Similar
// strings produce similar vectors, which is enough for deterministic tests.
func DummyEmbedding(text string) []float32 {
	vec := make([]float32, 256)
	for i, ch := range []byte(text) {
		vec[i%256] += float32(ch) / 255.0
	}
	return vec
}
