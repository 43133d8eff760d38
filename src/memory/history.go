// Package memory persists per-session conversation turns and retrieves the
// past turns most relevant to the current query.
package memory

import "context"

// Turn is one conversation entry. Role is "user" or "assistant".
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryStore is a pluggable backend for durable session history. Sessions
// are created lazily on first append and never explicitly destroyed; expiry
// is backend-dependent (e.g. TTL on redis).
//
// Implementations must serialize appends per session id: at most one writer
// appends to a given session's turn list at a time. Different sessions never
// contend.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, turns ...Turn) error
	History(ctx context.Context, sessionID string) ([]Turn, error)
}
