// Package core provides the foundational domain types and contracts used by
// turnstream. It defines:
//
//   - ChatTurn and Session (the persisted conversation aggregate)
//   - SessionStore (whole-session persistence)
//   - ResponseTracker (previous response chaining state)
//   - CancelToken (cooperative cancellation flag)
//   - OutputSurface / SideChannel (rendering sinks for answer and side results)
//   - ErrorReporter (central sink for non-stream failures)
//
// The package keeps implementation concerns (persistence backends, transport,
// orchestration) out of scope, exposing small interfaces so callers can plug
// custom backends and renderers.
package core
