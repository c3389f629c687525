// Package engine implements the turn execution orchestrator for turnstream.
//
// The Engine turns one prompt into one persisted ChatTurn. It owns the
// response tracker used to chain requests, the cancel token polled while a
// turn streams and the session the turns are appended to.
//
// # Turn lifecycle
//
//  1. A ChatTurn is appended to the session and marked for persistence.
//  2. BuildRequest derives the request from the config, the rendered
//     instructions, the previous response id and the reconciled vector
//     store. The request is snapshotted into the turn and the session is
//     saved before any byte is streamed.
//  3. model.Drive streams the request through five callbacks:
//     OnStart, OnProgress, OnError, OnShouldCancel and OnCancelled.
//  4. Every terminal state runs the same finalization: side channels are
//     settled into the turn (empty ones become NoItemFound), the token is
//     disarmed, the session is saved and the HistoryListener notified.
//
// State machine:
//
//	Created → Streaming → Succeeded | Failed | Cancelled
//
// Succeeded is only reached from OnProgress on response.completed. Failed
// writes the partial answer plus the error text and clears the response
// tracker. Cancelled writes the partial answer plus Aborted and keeps the
// tracker only if the server already created the response.
//
// # Usage
//
//	eng := engine.New(openai.NewStreamer(),
//	    func(o *engine.Options) {
//	        o.Config = cfg
//	        o.SessionStore = store
//	        o.Output = display.NewTerminal(os.Stdout)
//	    })
//
//	answer, err := eng.Execute(ctx, "2+2?")
//
// Only one turn runs at a time; a concurrent Execute returns
// ErrTurnInFlight. Submit runs a turn asynchronously and resolves once.
//
// # Hooks
//
// HookBeforeRequest and HookAfterTurn observe turns from the outside; see
// LoggingHook for a ready-made summary logger.
package engine
