package testutil

import (
	"github.com/tidwall/sjson"

	"github.com/hupe1980/turnstream/event"
)

// EventBuilder provides a fluent helper for constructing raw stream events in tests.
// Example:
//
//	ev := NewEventBuilder("response.output_text.delta").Field("delta", "Hel").Build()
//
// Chain only the fields you need; the `type` field is always set. Keys are
// sjson paths, so nested values can be set directly:
//
//	NewEventBuilder("response.failed").Field("response.error.code", "server_error")
type EventBuilder struct {
	raw string
	err error
}

// NewEventBuilder creates a builder for an event of the given type.
func NewEventBuilder(typ string) *EventBuilder {
	return (&EventBuilder{raw: "{}"}).Field("type", typ)
}

// Field sets a field at path (chainable).
func (b *EventBuilder) Field(path string, val any) *EventBuilder {
	if b.err != nil {
		return b
	}
	b.raw, b.err = sjson.Set(b.raw, path, val)
	return b
}

// Response sets the embedded response object (chainable).
func (b *EventBuilder) Response(resp map[string]any) *EventBuilder { return b.Field("response", resp) }

// Item sets the output item (chainable).
func (b *EventBuilder) Item(item map[string]any) *EventBuilder { return b.Field("item", item) }

// Annotation sets the annotation object (chainable).
func (b *EventBuilder) Annotation(a map[string]any) *EventBuilder { return b.Field("annotation", a) }

// Build returns the event. It panics if any field could not be set, which
// only happens for unsupported values or malformed paths in tests.
func (b *EventBuilder) Build() event.Event {
	if b.err != nil {
		panic(b.err)
	}
	return event.New(b.raw)
}

// Created returns a response.created event for the given response id.
func Created(id string) event.Event {
	return NewEventBuilder("response.created").Response(map[string]any{"id": id, "status": "in_progress"}).Build()
}

// Delta returns a response.output_text.delta event.
func Delta(text string) event.Event {
	return NewEventBuilder("response.output_text.delta").Field("delta", text).Build()
}

// TextDone returns a response.output_text.done event.
func TextDone(text string) event.Event {
	return NewEventBuilder("response.output_text.done").Field("text", text).Build()
}

// Completed returns a response.completed event whose single message output
// carries the given text fragments as output_text parts.
func Completed(id string, fragments ...string) event.Event {
	content := make([]map[string]any, 0, len(fragments))
	for _, f := range fragments {
		content = append(content, map[string]any{"type": "output_text", "text": f})
	}
	return NewEventBuilder("response.completed").Response(map[string]any{
		"id":     id,
		"status": "completed",
		"output": []map[string]any{{"id": "msg_1", "type": "message", "content": content}},
	}).Build()
}

// Error returns a top level error event.
func Error(code, message string) event.Event {
	return NewEventBuilder("error").Field("code", code).Field("message", message).Build()
}

// ItemAdded returns a response.output_item.added event for an item with the given id.
func ItemAdded(id, typ string) event.Event {
	return NewEventBuilder("response.output_item.added").Item(map[string]any{"id": id, "type": typ}).Build()
}

// ItemDone returns a response.output_item.done event for an item with the given id.
func ItemDone(id, typ string) event.Event {
	return NewEventBuilder("response.output_item.done").Item(map[string]any{"id": id, "type": typ}).Build()
}
