package tokenstore

import (
	"sync"

	"mdb/pkg/logging"
)

// MemoryStore keeps the token in process memory only.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) Set(token string) error {
	if err := validate(token); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	logging.Audit("token_stored", "Bearer token stored", "store", string(KindMemory))
	return nil
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	s.mu.Unlock()

	if had {
		logging.Audit("token_cleared", "Bearer token cleared", "store", string(KindMemory))
	}
}

func (s *MemoryStore) Kind() Kind {
	return KindMemory
}
