// Package session binds browser sessions to authenticated users. The
// authorize flow reads the session to skip the login prompt and establishes
// one after a successful interactive login.
package session

import (
	"context"
	"time"
)

// Session associates an opaque browser cookie value with a user.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store persists sessions. Implementations return sentinel.ErrNotFound
// (wrapped) for unknown IDs; expiry is enforced by the Manager so memory and
// Redis backends behave identically.
type Store interface {
	Save(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
