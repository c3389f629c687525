package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/turnstream/core"
)

// ErrSessionNotFound is returned by Load when no session with the id exists.
var ErrSessionNotFound = errors.New("session not found")

// InMemoryStore is a volatile SessionStore implementation storing
// sessions in a process local map. It is safe for concurrent access and best
// suited for tests or ephemeral CLI runs. Sessions are cloned on the way in
// and out to prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
	saves    int
}

// NewInMemoryStore constructs an empty in‑memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.Session)}
}

// Save stores a clone of the provided session snapshot.
func (s *InMemoryStore) Save(session *core.Session) error {
	if session == nil {
		return errors.New("nil session")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session.Clone()
	s.saves++
	return nil
}

// Load returns a clone of the stored session.
func (s *InMemoryStore) Load(id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess.Clone(), nil
}

// List returns the stored session ids in lexical order.
func (s *InMemoryStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *InMemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Saves returns how many times Save succeeded.
func (s *InMemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
