// Package logging provides a minimal logging interface and adapters for turnstream.
//
// The Logger interface defines the leveled methods (Debug, Info, Warn, Error)
// the engine and reconciler use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging (text or json)
//   - a charmbracelet/log backed pretty handler for interactive terminals
//   - TurnLogger adding session / turn attributes and stream summaries
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	eng := engine.New(streamer, store, func(o *engine.Options) { o.Logger = logger })
package logging
