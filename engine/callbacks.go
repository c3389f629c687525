package engine

import (
	"context"
	"time"

	"github.com/hupe1980/turnstream/core"
	"github.com/hupe1980/turnstream/logging"
	"github.com/hupe1980/turnstream/model"
)

// HookType defines the lifecycle points of a turn where hooks run.
//
// Hooks complement the five stream callbacks wired into model.Drive: they
// observe a turn from the outside without touching the dispatch path.
type HookType string

const (
	// HookBeforeRequest runs after the request is built and before it is
	// snapshotted and sent. Hooks may adjust the request; an error fails
	// the turn before any stream is opened.
	HookBeforeRequest HookType = "before_request"

	// HookAfterTurn runs once the turn reached a terminal state and was
	// finalized. Errors are reported, the outcome is not changed.
	HookAfterTurn HookType = "after_turn"
)

// HookContext carries the turn under execution to a hook.
type HookContext struct {
	Session *core.Session
	Turn    *core.ChatTurn

	// Request is mutable during HookBeforeRequest.
	Request *model.Request

	// Outcome, Err, Events and Duration are set for HookAfterTurn.
	Outcome  model.Outcome
	Err      error
	Events   int
	Duration time.Duration
}

// Hook is a turn lifecycle extension.
//
// Implementations should be fast: hooks run synchronously on the turn's
// goroutine.
type Hook interface {
	// Type returns the hook type this implementation handles.
	Type() HookType

	// Execute performs the hook logic with the provided context.
	Execute(ctx context.Context, hctx *HookContext) error
}

// FunctionHook wraps a function as a hook implementation.
//
// Example:
//
//	audit := NewFunctionHook(HookAfterTurn, func(ctx context.Context, h *HookContext) error {
//	    log.Printf("turn %s: %s", h.Turn.ID, h.Outcome)
//	    return nil
//	})
type FunctionHook struct {
	hookType HookType
	fn       func(ctx context.Context, hctx *HookContext) error
}

// NewFunctionHook creates a new function-based hook.
func NewFunctionHook(hookType HookType, fn func(ctx context.Context, hctx *HookContext) error) *FunctionHook {
	return &FunctionHook{hookType: hookType, fn: fn}
}

// Type returns the hook type this function handles.
func (h *FunctionHook) Type() HookType { return h.hookType }

// Execute calls the wrapped function.
func (h *FunctionHook) Execute(ctx context.Context, hctx *HookContext) error {
	return h.fn(ctx, hctx)
}

// HookManager runs registered hooks in registration order. Any hook
// returning an error stops the remaining hooks of that type.
//
// Registration is not synchronized; register every hook before the first
// turn starts.
type HookManager struct {
	hooks map[HookType][]Hook
}

// NewHookManager creates an empty hook manager.
func NewHookManager() *HookManager {
	return &HookManager{hooks: make(map[HookType][]Hook)}
}

// Register adds a hook.
func (m *HookManager) Register(h Hook) {
	m.hooks[h.Type()] = append(m.hooks[h.Type()], h)
}

// Execute runs every hook of hookType.
func (m *HookManager) Execute(ctx context.Context, hookType HookType, hctx *HookContext) error {
	for _, h := range m.hooks[hookType] {
		if err := h.Execute(ctx, hctx); err != nil {
			return err
		}
	}
	return nil
}

// LoggingHook logs a summary line for every finished turn.
type LoggingHook struct {
	logger *logging.TurnLogger
}

// NewLoggingHook creates a logging hook over l.
func NewLoggingHook(l logging.Logger) *LoggingHook {
	return &LoggingHook{logger: logging.NewTurnLogger(l).WithComponent("engine")}
}

// Type returns HookAfterTurn.
func (h *LoggingHook) Type() HookType { return HookAfterTurn }

// Execute logs the finished stream.
func (h *LoggingHook) Execute(_ context.Context, hctx *HookContext) error {
	var modelName string
	if hctx.Request != nil {
		modelName = hctx.Request.Model
	}
	var sessionID, turnID string
	if hctx.Session != nil {
		sessionID = hctx.Session.ID
	}
	if hctx.Turn != nil {
		turnID = hctx.Turn.ID
	}
	h.logger.WithTurn(sessionID, turnID).LogStream(modelName, hctx.Events, hctx.Duration, hctx.Outcome.String(), hctx.Err)
	return nil
}
