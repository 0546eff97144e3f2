package store

import (
	"context"
	"encoding/json"
	"sync"

	"bitid/internal/identity/models"
)

// MemoryStore keeps the collection in process memory. It exists for tests
// and honors the same seed-on-empty contract as the durable adapters.
// Records are snapshotted through JSON so the store never aliases a
// caller's slice.
type MemoryStore struct {
	mu      sync.RWMutex
	users   []byte
	session string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.users == nil {
		seed := SeedUsers()
		data, err := json.Marshal(seed)
		if err != nil {
			return nil, err
		}
		s.users = data
		return seed, nil
	}

	var users []*models.User
	if err := json.Unmarshal(s.users, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MemoryStore) SaveUsers(ctx context.Context, users []*models.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = data
	return nil
}

func (s *MemoryStore) LoadSession(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, nil
}

func (s *MemoryStore) SaveSession(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = userID
	return nil
}

func (s *MemoryStore) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = ""
	return nil
}
