// Package session houses concrete implementations of core.SessionStore.
// The interface itself (and the Session struct) live in the core package to
// centralize domain contracts; keeping only implementations here prevents
// higher level packages (engine) from depending on concrete storage.
//
// Backends:
//   - InMemoryStore: process local, used by tests and as the engine default
//   - GormStore: SQLite or Postgres through gorm, one row per session
//
// NewStore selects a backend by driver name so only the wiring layer
// decides which implementation to instantiate.
package session
