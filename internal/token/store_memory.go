package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"signet/pkg/platform/sentinel"
)

// InMemoryCodeStore stores authorization codes in memory for tests/dev.
type InMemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]*CodeRecord
}

// NewInMemoryCodeStore constructs an empty in-memory code store.
func NewInMemoryCodeStore() *InMemoryCodeStore {
	return &InMemoryCodeStore{codes: make(map[string]*CodeRecord)}
}

func (s *InMemoryCodeStore) Create(_ context.Context, record *CodeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[record.Code] = record
	return nil
}

// Consume validates and marks the code used under one lock, so two racing
// exchanges cannot both succeed.
func (s *InMemoryCodeStore) Consume(_ context.Context, code string, now time.Time) (*CodeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.codes[code]
	if !ok {
		return nil, fmt.Errorf("authorization code: %w", sentinel.ErrNotFound)
	}
	if record.UsedAt != nil {
		return nil, fmt.Errorf("authorization code: %w", sentinel.ErrAlreadyUsed)
	}
	if now.After(record.ExpiresAt) {
		return nil, fmt.Errorf("authorization code: %w", sentinel.ErrExpired)
	}
	record.MarkUsed(now)
	return record, nil
}
