package model

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/turnstream/event"
)

// Tool types understood by the Responses API.
const (
	ToolFileSearch = "file_search"
	ToolWebSearch  = "web_search_preview"
)

// UserLocation approximates the user's position for web search ranking.
type UserLocation struct {
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
	Region   string `json:"region,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// IsZero reports whether no location field is set.
func (u UserLocation) IsZero() bool {
	return u.City == "" && u.Country == "" && u.Region == "" && u.Timezone == ""
}

// Tool is one hosted tool attached to a request.
type Tool struct {
	Type              string        `json:"type"`
	VectorStoreIDs    []string      `json:"vector_store_ids,omitempty"`
	MaxNumResults     int64         `json:"max_num_results,omitempty"`
	SearchContextSize string        `json:"search_context_size,omitempty"`
	UserLocation      *UserLocation `json:"user_location,omitempty"`
}

// Reasoning configures reasoning models.
type Reasoning struct {
	Effort  string `json:"effort,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Request is the provider-agnostic outgoing request. It is serialized into
// the turn as the request snapshot, so every field but Timeout is part of
// the persisted shape.
type Request struct {
	Model              string     `json:"model"`
	Input              string     `json:"input"`
	Instructions       string     `json:"instructions,omitempty"`
	Tools              []Tool     `json:"tools"`
	ToolChoice         string     `json:"tool_choice,omitempty"`
	Stream             bool       `json:"stream"`
	Store              bool       `json:"store"`
	PreviousResponseID string     `json:"previous_response_id,omitempty"`
	Reasoning          *Reasoning `json:"reasoning,omitempty"`

	// Timeout bounds the transport request; zero leaves the client default.
	Timeout time.Duration `json:"-"`
}

// HasTool reports whether a tool of the given type is attached.
func (r Request) HasTool(typ string) bool {
	for _, t := range r.Tools {
		if t.Type == typ {
			return true
		}
	}
	return false
}

// Stream is an incremental event sequence. Its shape mirrors the SDK
// stream: call Next until it returns false, then inspect Err.
type Stream interface {
	Next() bool
	Current() event.Event
	Err() error
	Close() error
}

// Streamer opens a response stream for a request.
type Streamer interface {
	Stream(ctx context.Context, req Request) Stream
}

// OutputText concatenates every text fragment of every output item of a
// response JSON object.
func OutputText(response string) string {
	var sb strings.Builder
	gjson.Get(response, "output").ForEach(func(_, item gjson.Result) bool {
		item.Get("content").ForEach(func(_, part gjson.Result) bool {
			if t := part.Get("text"); t.Exists() {
				sb.WriteString(t.String())
			}
			return true
		})
		return true
	})
	return sb.String()
}

// ScriptedStreamer is a lightweight in-memory Streamer useful for tests and
// examples. It replays a fixed event sequence and optionally fails at the end.
type ScriptedStreamer struct {
	mu       sync.Mutex
	events   []event.Event
	err      error
	requests []Request

	// BeforeEvent, if set, runs before the i-th event is delivered.
	BeforeEvent func(i int)
}

// NewScriptedStreamer returns a streamer replaying events.
func NewScriptedStreamer(events ...event.Event) *ScriptedStreamer {
	return &ScriptedStreamer{events: events}
}

// FailWith makes the stream end with err once events are exhausted.
func (s *ScriptedStreamer) FailWith(err error) *ScriptedStreamer {
	s.err = err
	return s
}

// Requests returns the requests received so far.
func (s *ScriptedStreamer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Stream implements Streamer.
func (s *ScriptedStreamer) Stream(ctx context.Context, req Request) Stream {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return &scriptedStream{ctx: ctx, owner: s, idx: -1}
}

type scriptedStream struct {
	ctx   context.Context
	owner *ScriptedStreamer
	idx   int
	err   error
}

func (s *scriptedStream) Next() bool {
	if s.err != nil {
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if s.idx+1 >= len(s.owner.events) {
		s.err = s.owner.err
		return false
	}
	s.idx++
	if s.owner.BeforeEvent != nil {
		s.owner.BeforeEvent(s.idx)
	}
	return true
}

func (s *scriptedStream) Current() event.Event { return s.owner.events[s.idx] }

func (s *scriptedStream) Err() error { return s.err }

func (s *scriptedStream) Close() error { return nil }
