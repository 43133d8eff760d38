package memory

import (
	"context"
	"sync"
)

// InMemoryHistory keeps session histories in process memory. Useful for
// development and tests; everything is lost on restart.
type InMemoryHistory struct {
	mu       sync.RWMutex
	sessions map[string]*sessionHistory
}

// sessionHistory owns one session's turn list. Each session carries its own
// lock so appends serialize per session id, not globally.
type sessionHistory struct {
	mu    sync.Mutex
	turns []Turn
}

func NewInMemoryHistory() *InMemoryHistory {
	return &InMemoryHistory{sessions: make(map[string]*sessionHistory)}
}

func (s *InMemoryHistory) session(id string) *sessionHistory {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[id]; ok {
		return sess
	}
	sess = &sessionHistory{}
	s.sessions[id] = sess
	return sess
}

func (s *InMemoryHistory) Append(_ context.Context, sessionID string, turns ...Turn) error {
	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.turns = append(sess.turns, turns...)
	return nil
}

func (s *InMemoryHistory) History(_ context.Context, sessionID string) ([]Turn, error) {
	sess := s.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]Turn, len(sess.turns))
	copy(out, sess.turns)
	return out, nil
}

var _ HistoryStore = (*InMemoryHistory)(nil)
