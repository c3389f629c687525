// Package event classifies and routes Responses API stream events.
//
// The catalogue of event types is closed (Kind); ParseKind rejects any type
// outside it with ErrUnknownKind. Dispatcher maps every Kind to exactly one
// handler through a single switch, mutating the in-flight turn, the
// response tracker, the output surface and the side channels, and returns
// whether the stream should continue. Only the "error" kind stops a stream.
package event
