package user

import (
	"context"
	"fmt"
	"sync"

	"signet/pkg/platform/sentinel"
)

// Store resolves users by the identifiers the authorize flow needs.
// Implementations return sentinel.ErrNotFound (wrapped) for missing users.
type Store interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

// InMemoryStore keeps users in memory for tests/dev.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by ID
}

// NewInMemory constructs an empty in-memory user store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]*User)}
}

// Save adds or replaces a user.
func (s *InMemoryStore) Save(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *InMemoryStore) FindByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user id %q: %w", id, sentinel.ErrNotFound)
}
