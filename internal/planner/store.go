package planner

import (
	"sync"
	"time"
)

// DefaultDraftTTL is how long an untouched draft survives before the
// store evicts it and disposes its plotter.
const DefaultDraftTTL = 2 * time.Hour

// Store holds active drafts in memory with TTL eviction. Abandoned
// drafts are swept periodically so their plotters get disposed.
type Store struct {
	mu      sync.RWMutex
	drafts  map[string]*storeEntry
	ttl     time.Duration
	done    chan struct{}
	closeMu sync.Once
}

type storeEntry struct {
	draft     *Draft
	expiresAt time.Time
}

// NewStore creates a draft store. A non-positive ttl falls back to
// DefaultDraftTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}

	s := &Store{
		drafts: make(map[string]*storeEntry),
		ttl:    ttl,
		done:   make(chan struct{}),
	}

	go s.janitor()
	return s
}

// Put stores a draft and refreshes its expiry.
func (s *Store) Put(d *Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[d.ID] = &storeEntry{
		draft:     d,
		expiresAt: time.Now().Add(s.ttl),
	}
}

// Get retrieves a draft owned by the given user and refreshes its
// expiry. Drafts owned by other users are reported as not found.
func (s *Store) Get(userID, draftID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.drafts[draftID]
	if !ok || entry.draft.UserID != userID {
		return nil, ErrDraftNotFound
	}
	if time.Now().After(entry.expiresAt) {
		s.evictLocked(draftID, entry)
		return nil, ErrDraftNotFound
	}

	entry.expiresAt = time.Now().Add(s.ttl)
	return entry.draft, nil
}

// Delete removes a draft owned by the given user and disposes its plotter.
func (s *Store) Delete(userID, draftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.drafts[draftID]
	if !ok || entry.draft.UserID != userID {
		return ErrDraftNotFound
	}

	s.evictLocked(draftID, entry)
	return nil
}

// Len reports the number of stored drafts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// Close stops the janitor and disposes every remaining draft.
func (s *Store) Close() {
	s.closeMu.Do(func() { close(s.done) })

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.drafts {
		s.evictLocked(id, entry)
	}
}

func (s *Store) evictLocked(id string, entry *storeEntry) {
	delete(s.drafts, id)
	entry.draft.disposePlotter()
}

func (s *Store) janitor() {
	interval := s.ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Store) sweep() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.drafts {
		if now.After(entry.expiresAt) {
			s.evictLocked(id, entry)
		}
	}
}

// disposePlotter releases the draft's plotter exactly once.
func (d *Draft) disposePlotter() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disposed {
		return
	}
	d.disposed = true
	if d.plotter != nil {
		d.plotter.Dispose()
		d.plotter = nil
	}
}
