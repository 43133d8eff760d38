// Package cache maps derived cache keys to previously computed agent
// results. The key material is the concatenation of retrieved context and the
// current user message; it deliberately excludes the session id, so identical
// questions with identical context hit across sessions.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Cache is a pluggable result cache. Implementations decide whether lookup
// is exact (hash of the key material) or similarity-based (embedding of it).
type Cache interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Store(ctx context.Context, key, value string) error
}

// HashKey derives the exact-match storage key from the raw key material.
func HashKey(material string) string {
	h := sha256.Sum256([]byte(material))
	return hex.EncodeToString(h[:])
}
