package session

import (
	"context"
	"sync"
)

// Store holds the pending date for each user
type Store interface {
	// Set records date for userID, replacing any earlier value.
	Set(ctx context.Context, userID, date string) error
	// Pop returns the stored date and removes it. ok is false when none exists.
	Pop(ctx context.Context, userID string) (date string, ok bool, err error)
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a Store backed by a map
type MemoryStore struct {
	mu    sync.Mutex
	dates map[string]string
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{dates: make(map[string]string)}
}

// Set implements Store
func (m *MemoryStore) Set(_ context.Context, userID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dates[userID] = date
	return nil
}

// Pop implements Store
func (m *MemoryStore) Pop(_ context.Context, userID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	date, ok := m.dates[userID]
	if ok {
		delete(m.dates, userID)
	}
	return date, ok, nil
}

// Get returns the pending date without removing it
func (m *MemoryStore) Get(userID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	date, ok := m.dates[userID]
	return date, ok
}

// Len returns the number of users with a pending date
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dates)
}
