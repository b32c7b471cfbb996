// Package cache is a keyed, TTL-bounded snapshot store for remote-ledger
// reads. Entries are kept in memory only and are rebuildable from the remote
// source of truth; the cache is advisory, never authoritative.
package cache

import (
	"sync"
	"time"

	"github.com/minhdn/jarbot/internal/domain"
)

// Resource distinguishes the cached read kinds for one user.
type Resource string

const (
	ResourceBalance    Resource = "balance"
	ResourceCategories Resource = "categories"
	ResourceRecent     Resource = "recent"
)

type key struct {
	user domain.UserID
	res  Resource
}

type entry struct {
	value    any
	storedAt time.Time
}

// Store maps (user, resource) to a snapshot taken at a point in time. It is
// safe for concurrent use; entries for different users never interact.
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[key]entry

	// now is swappable in tests.
	now func() time.Time
}

// NewStore creates a store whose entries expire ttl after they were put.
// A non-positive ttl disables caching entirely: every Get misses.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[key]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for (user, res) if it exists and has not
// expired.
func (s *Store) Get(user domain.UserID, res Resource) (any, bool) {
	if s.ttl <= 0 {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key{user, res}]
	s.mu.RUnlock()

	if !ok || s.now().Sub(e.storedAt) > s.ttl {
		return nil, false
	}
	return e.value, true
}

// Put stores a snapshot for (user, res), replacing any previous one.
func (s *Store) Put(user domain.UserID, res Resource, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key{user, res}] = entry{value: value, storedAt: s.now()}
}

// Invalidate drops the named resources for one user, or every resource of
// that user when none are named. Other users are untouched.
func (s *Store) Invalidate(user domain.UserID, resources ...Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(resources) == 0 {
		for k := range s.entries {
			if k.user == user {
				delete(s.entries, k)
			}
		}
		return
	}
	for _, res := range resources {
		delete(s.entries, key{user, res})
	}
}

// Len reports the number of live (possibly expired) entries. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
