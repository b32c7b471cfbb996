// Package session holds each user's single in-flight transaction draft. A
// draft lives only for the duration of one confirmation dialog: it is
// replaced by any newer parsed message, and destroyed on commit or cancel.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/minhdn/jarbot/internal/domain"
)

// ErrNoDraft is returned when a dialog step arrives for a user with no
// in-flight draft (e.g. a stale button press after a cancel).
var ErrNoDraft = errors.New("session: no in-flight draft")

// Store keeps at most one draft per user. It is safe for concurrent use;
// entries for different users never contend beyond the map lock.
//
// Drafts are stored and returned by value copy, so a caller mutating its
// copy must Put it back for the change to stick.
type Store struct {
	mu     sync.RWMutex
	drafts map[domain.UserID]domain.TransactionDraft

	// maxAge bounds how long an abandoned draft survives; zero means
	// forever (a stale draft holds no external lock, so this is purely a
	// memory-growth guard).
	maxAge time.Duration
	now    func() time.Time
}

// NewStore creates a draft store. maxAge of zero disables sweeping.
func NewStore(maxAge time.Duration) *Store {
	return &Store{
		drafts: make(map[domain.UserID]domain.TransactionDraft),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Put saves the draft for its user, replacing any previous one. The previous
// draft, if any, is returned so the caller can log the supersession.
func (s *Store) Put(d domain.TransactionDraft) (prev domain.TransactionDraft, replaced bool) {
	d.UpdatedAt = s.now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = d.UpdatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, replaced = s.drafts[d.UserID]
	s.drafts[d.UserID] = d
	return prev, replaced
}

// Get returns a copy of the user's draft.
func (s *Store) Get(user domain.UserID) (domain.TransactionDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[user]
	if !ok {
		return domain.TransactionDraft{}, ErrNoDraft
	}
	return d, nil
}

// Delete destroys the user's draft. Deleting a missing draft is a no-op.
func (s *Store) Delete(user domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, user)
}

// Len reports how many drafts are in flight.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// Sweep evicts drafts untouched for longer than maxAge and returns how many
// were dropped. A no-op when maxAge is zero.
func (s *Store) Sweep() int {
	if s.maxAge <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()
	var dropped int
	for user, d := range s.drafts {
		if d.UpdatedAt.Before(cutoff) {
			delete(s.drafts, user)
			dropped++
		}
	}
	return dropped
}

// RunSweeper periodically sweeps until the context is cancelled. Call it in
// its own goroutine.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, log zerolog.Logger) {
	if s.maxAge <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Info().Int("dropped", n).Msg("swept abandoned drafts")
			}
		}
	}
}
