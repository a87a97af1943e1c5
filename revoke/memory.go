package revoke

import (
	"context"
	"sync"
	"time"
)

// purgeEvery bounds how much garbage the lazy purge tolerates between
// full sweeps.
const purgeEvery = 256

// MemoryStore is an in-process blacklist with the same semantics as
// [RedisStore]. Mutations are serialized by a mutex, which gives
// RevokeOnce its compare-and-insert atomicity.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ops     int

	// now is swappable for tests.
	now func() time.Time
}

// NewMemoryStore creates an empty in-process blacklist.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke inserts the entry for tokenID; revoking twice is a no-op that
// keeps the earlier expiry.
func (s *MemoryStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl < minEntryTTL {
		ttl = minEntryTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.maybePurgeLocked()

	if _, ok := s.liveEntryLocked(tokenID); !ok {
		s.entries[tokenID] = s.now().Add(ttl)
	}
	return nil
}

// RevokeOnce inserts the entry and reports whether this call created it.
func (s *MemoryStore) RevokeOnce(_ context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl < minEntryTTL {
		ttl = minEntryTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.maybePurgeLocked()

	if _, ok := s.liveEntryLocked(tokenID); ok {
		return false, nil
	}
	s.entries[tokenID] = s.now().Add(ttl)
	return true, nil
}

// IsRevoked reports whether tokenID has an unexpired entry.
func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maybePurgeLocked()

	_, ok := s.liveEntryLocked(tokenID)
	return ok, nil
}

// Len returns the number of unexpired entries. Intended for tests and
// diagnostics.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	now := s.now()
	for _, expiry := range s.entries {
		if expiry.After(now) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) liveEntryLocked(tokenID string) (time.Time, bool) {
	expiry, ok := s.entries[tokenID]
	if !ok {
		return time.Time{}, false
	}
	if !expiry.After(s.now()) {
		delete(s.entries, tokenID)
		return time.Time{}, false
	}
	return expiry, true
}

func (s *MemoryStore) maybePurgeLocked() {
	s.ops++
	if s.ops < purgeEvery {
		return
	}
	s.ops = 0

	now := s.now()
	for id, expiry := range s.entries {
		if !expiry.After(now) {
			delete(s.entries, id)
		}
	}
}
