// Package session keeps one table per dashboard user instead of a single
// process-wide slot.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/dashcsv/internal/table"
)

// Session owns the most recently ingested table of one user.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.RWMutex
	table    *table.Table
	lastSeen time.Time
}

// Table returns the current snapshot. Tables are immutable, so callers may
// keep using it while another upload replaces it.
func (s *Session) Table() *table.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Replace swaps in a freshly ingested table.
func (s *Session) Replace(t *table.Table) {
	s.mu.Lock()
	s.table = t
	s.mu.Unlock()
}

// Clear drops the table, as when the upload widget is emptied.
func (s *Session) Clear() { s.Replace(nil) }

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Store indexes sessions by ID and expires idle ones.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates a store; ttl <= 0 disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, now: time.Now, sessions: make(map[string]*Session)}
}

// Create starts a new session with a random ID.
func (st *Store) Create() *Session {
	now := st.now()
	s := &Session{ID: uuid.NewString(), Created: now, lastSeen: now}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns a live session and marks it as used.
func (st *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()
	if !ok {
		return nil, false
	}
	now := st.now()
	if st.expired(s, now) {
		st.Delete(id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Delete forgets a session.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of tracked sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if st.expired(s, now) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	if st.ttl <= 0 || interval <= 0 {
		return
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			st.Sweep(now)
		}
	}
}

func (st *Store) expired(s *Session, now time.Time) bool {
	return st.ttl > 0 && now.Sub(s.idleSince()) > st.ttl
}
