package model

import (
	"context"
	"errors"

	"github.com/hupe1980/turnstream/event"
)

// ErrStreamClosed is reported when a stream ends without a terminal
// completion event.
var ErrStreamClosed = errors.New("stream closed before completion")

// Outcome is the terminal state of a driven stream.
type Outcome int

const (
	// Succeeded means OnProgress reported completion.
	Succeeded Outcome = iota
	// Failed means OnError ran.
	Failed
	// Cancelled means OnCancelled ran.
	Cancelled
)

// String returns a lowercase outcome name.
func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Callbacks are the lifecycle hooks wired into one stream.
//
// OnProgress runs once per event in arrival order and returns done=true
// when the event completed the response, or an error to fail the stream.
// OnShouldCancel is polled before each event and once more when the stream
// stops delivering; it must not mutate state.
type Callbacks struct {
	OnStart        func()
	OnProgress     func(ev event.Event) (done bool, err error)
	OnError        func(err error)
	OnShouldCancel func() bool
	OnCancelled    func()
}

// Drive opens a stream and feeds it through cb until success, failure or
// cancellation. Exactly one of OnProgress completion, OnError or
// OnCancelled ends the stream. The returned error is the one passed to
// OnError.
func Drive(ctx context.Context, s Streamer, req Request, cb Callbacks) (Outcome, error) {
	stream := s.Stream(ctx, req)
	defer func() { _ = stream.Close() }()

	if cb.OnStart != nil {
		cb.OnStart()
	}

	shouldCancel := func() bool { return cb.OnShouldCancel != nil && cb.OnShouldCancel() }
	cancel := func() (Outcome, error) {
		if cb.OnCancelled != nil {
			cb.OnCancelled()
		}
		return Cancelled, nil
	}
	fail := func(err error) (Outcome, error) {
		if cb.OnError != nil {
			cb.OnError(err)
		}
		return Failed, err
	}

	for {
		if shouldCancel() {
			return cancel()
		}
		if !stream.Next() {
			break
		}
		done, err := cb.OnProgress(stream.Current())
		if err != nil {
			return fail(err)
		}
		if done {
			return Succeeded, nil
		}
	}

	// A blocked Next may return because the turn context was cancelled.
	if shouldCancel() {
		return cancel()
	}
	if err := stream.Err(); err != nil {
		return fail(err)
	}
	return fail(ErrStreamClosed)
}
