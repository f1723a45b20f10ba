// Package session keeps one ViewState per client. Sessions expire after an
// idle TTL measured on an injectable clock.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

type entry struct {
	view     domain.ViewState
	lastSeen time.Time
}

// Store is a concurrency-safe map from session ID to ViewState.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	clock   clockwork.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// NewStore creates a store whose sessions expire after ttl without use.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a session whose selection is initial and returns its ID.
func (s *Store) Create(initial float64) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &entry{view: domain.NewViewState(initial), lastSeen: s.clock.Now()}
	return id
}

// Get returns a copy of the session's view. Unknown or expired IDs report false.
func (s *Store) Get(id string) (domain.ViewState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(id)
	if !ok {
		return domain.ViewState{}, false
	}
	e.lastSeen = s.clock.Now()
	return e.view, true
}

// Put stores view under id, creating or reviving the session.
func (s *Store) Put(id string, view domain.ViewState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &entry{view: view, lastSeen: s.clock.Now()}
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) >= s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of held sessions, expired ones included until swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RunSweeper sweeps every interval until ctx is cancelled. onSweep, if set,
// receives the session count after each sweep.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(live int)) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Sweep()
			if onSweep != nil {
				onSweep(s.Len())
			}
		}
	}
}

// live must be called with mu held.
func (s *Store) live(id string) (*entry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if s.clock.Now().Sub(e.lastSeen) >= s.ttl {
		delete(s.entries, id)
		return nil, false
	}
	return e, true
}
