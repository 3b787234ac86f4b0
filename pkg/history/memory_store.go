package history

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store. Nothing survives a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[string][]Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[string][]Message)}
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, msgs ...Message) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.logs[sessionID]
	if turn := turnOf(msgs); turn != "" && len(log) > 0 && log[len(log)-1].TurnID == turn {
		return nil
	}
	s.logs[sessionID] = append(log, msgs...)
	return nil
}

func (s *MemoryStore) Messages(_ context.Context, sessionID string) ([]Message, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.logs[sessionID]))
	copy(out, s.logs[sessionID])
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, sessionID)
	return nil
}
