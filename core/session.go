package core

import (
	"sync"
	"time"
	"unicode/utf8"
)

const maxTitleRunes = 40

// ChatTurn is one prompt/response exchange. It is owned by its Session,
// mutated while the turn streams and left untouched once a new turn begins.
//
// Request, RawResponse, FileSearchRaw and WebSearchRaw hold JSON snapshots.
// FileSearch, WebSearch and Reasoning hold the side channel text copied when
// the turn is finalized.
type ChatTurn struct {
	ID            string    `json:"id"`
	Prompt        string    `json:"prompt"`
	Response      string    `json:"response"`
	Request       string    `json:"request,omitempty"`
	RawResponse   string    `json:"raw_response,omitempty"`
	FileSearchRaw string    `json:"file_search_raw,omitempty"`
	WebSearchRaw  string    `json:"web_search_raw,omitempty"`
	FileSearch    string    `json:"file_search,omitempty"`
	WebSearch     string    `json:"web_search,omitempty"`
	Reasoning     string    `json:"reasoning,omitempty"`
	ResponseID    string    `json:"response_id,omitempty"`
	Storage       bool      `json:"storage"`
	Created       time.Time `json:"created"`
}

// Session is an ordered sequence of turns (insertion order is conversation
// order). It is the unit of persistence and is safe for concurrent access.
type Session struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Turns    []*ChatTurn `json:"turns"`
	Created  time.Time   `json:"created"`
	Modified time.Time   `json:"modified"`
	mu       sync.RWMutex
}

// NewSession creates an empty session with the given ID.
func NewSession(id string) *Session {
	return &Session{ID: id, Turns: []*ChatTurn{}}
}

// AddTurn appends a new turn. The first turn stamps Created and derives the
// title from the prompt; every call stamps Modified.
func (s *Session) AddTurn(t *ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if len(s.Turns) == 0 {
		s.Created = now
		if s.Title == "" {
			s.Title = titleFrom(t.Prompt)
		}
	}
	if t.Created.IsZero() {
		t.Created = now
	}
	s.Turns = append(s.Turns, t)
	s.Modified = now
}

// Current returns the most recent turn or nil for an empty session.
func (s *Session) Current() *ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.Turns) == 0 {
		return nil
	}
	return s.Turns[len(s.Turns)-1]
}

// Len returns the number of turns.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Turns)
}

// Touch stamps Modified.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Modified = time.Now()
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{ID: s.ID, Title: s.Title, Created: s.Created, Modified: s.Modified, Turns: make([]*ChatTurn, len(s.Turns))}
	for i, t := range s.Turns {
		cp := *t
		clone.Turns[i] = &cp
	}
	return clone
}

func titleFrom(prompt string) string {
	if utf8.RuneCountInString(prompt) <= maxTitleRunes {
		return prompt
	}
	r := []rune(prompt)
	return string(r[:maxTitleRunes]) + "…"
}

// SessionStore persists sessions as a whole. The in-memory Session is the
// single source of truth; Save is called after every state changing step.
type SessionStore interface {
	Save(session *Session) error
	Load(id string) (*Session, error)
	List() ([]string, error)
	Delete(id string) error
}

// HistoryListener is notified after a turn has been finalized so history
// views can refresh.
type HistoryListener interface {
	SessionChanged(session *Session)
}
