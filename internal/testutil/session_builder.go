package testutil

import (
	"github.com/hupe1980/turnstream/core"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("sess-1").Title("demo").Turn("hi", "hello").Build()
type SessionBuilder struct {
	id    string
	title string
	turns []*core.ChatTurn
}

// NewSessionBuilder creates a new builder for a session with the given id.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id}
}

// Title sets the session title (chainable).
func (b *SessionBuilder) Title(t string) *SessionBuilder {
	b.title = t
	return b
}

// Turn appends a completed turn with the given prompt and response (chainable).
func (b *SessionBuilder) Turn(prompt, response string) *SessionBuilder {
	b.turns = append(b.turns, &core.ChatTurn{Prompt: prompt, Response: response, Storage: true})
	return b
}

// Build returns a *core.Session with the turns appended in order.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id)
	s.Title = b.title
	for _, t := range b.turns {
		s.AddTurn(t)
	}
	return s
}
