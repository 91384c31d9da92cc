package client

import (
	"context"
	"fmt"
	"sync"

	"signet/pkg/platform/sentinel"
)

// Error contract: stores return sentinel.ErrNotFound (wrapped) when the
// client does not exist, nil on success, and wrapped infrastructure errors
// otherwise. Services translate sentinels into domain errors.

// InMemoryDirectory keeps client registrations in memory for tests/dev.
type InMemoryDirectory struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewInMemory constructs an empty in-memory directory.
func NewInMemory() *InMemoryDirectory {
	return &InMemoryDirectory{clients: make(map[string]*Client)}
}

// Register adds or replaces a client registration.
func (d *InMemoryDirectory) Register(_ context.Context, c *Client) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clients[c.ClientID] = c
	return nil
}

func (d *InMemoryDirectory) FindByClientID(_ context.Context, clientID string) (*Client, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if c, ok := d.clients[clientID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("client %q: %w", clientID, sentinel.ErrNotFound)
}
