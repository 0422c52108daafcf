package draft

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps drafts in process. It is used when Redis is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	draft     Draft
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock expires drafts against now instead of the wall clock.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}, now: now}
}

func (s *MemoryStore) Save(_ context.Context, d Draft, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = now.UTC()
	}
	s.entries[d.ScreenID] = memoryEntry{draft: d, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, screenID string) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[screenID]
	if !ok {
		return Draft{}, ErrNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, screenID)
		return Draft{}, ErrNotFound
	}
	return entry.draft, nil
}

func (s *MemoryStore) Delete(_ context.Context, screenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, screenID)
	return nil
}
