// Package display provides default output surfaces and side channel sinks:
// an in-memory Channel, a Recorder capturing answer output, and a Terminal
// surface writing styled text to an io.Writer.
package display

import (
	"strings"
	"sync"

	"github.com/hupe1980/turnstream/core"
)

// Channel is an in-memory side channel. Display appends to the text.
type Channel struct {
	mu   sync.RWMutex
	text strings.Builder
}

// NewChannel returns an empty channel.
func NewChannel() *Channel { return &Channel{} }

// Clear discards the accumulated text.
func (c *Channel) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text.Reset()
}

// Display appends text.
func (c *Channel) Display(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text.WriteString(text)
}

// IsEmpty reports whether the channel holds only whitespace.
func (c *Channel) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.TrimSpace(c.text.String()) == ""
}

// Text returns the accumulated text.
func (c *Channel) Text() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.text.String()
}

// NewSideChannels returns three fresh in-memory channels.
func NewSideChannels() core.SideChannels {
	return core.SideChannels{FileSearch: NewChannel(), WebSearch: NewChannel(), Reasoning: NewChannel()}
}

// Recorder is an OutputSurface that records everything it receives.
type Recorder struct {
	mu           sync.Mutex
	Prompts      []string
	Chunks       []string
	Finals       int
	Indicator    bool
	IndicatorOns int
	Cancelled    bool
}

// Prompt records the turn prompt.
func (r *Recorder) Prompt(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prompts = append(r.Prompts, text)
}

// DisplayStream records a chunk.
func (r *Recorder) DisplayStream(text string, final bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if final {
		r.Finals++
		return
	}
	r.Chunks = append(r.Chunks, text)
}

// ShowReasoningIndicator turns the indicator on.
func (r *Recorder) ShowReasoningIndicator() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Indicator = true
	r.IndicatorOns++
}

// HideReasoningIndicator turns the indicator off.
func (r *Recorder) HideReasoningIndicator() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Indicator = false
}

// ShowCancelled records the cancellation notice.
func (r *Recorder) ShowCancelled() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Indicator = false
	r.Cancelled = true
}

// Streamed returns the concatenated chunks.
func (r *Recorder) Streamed() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.Chunks, "")
}

// Discard is an OutputSurface that ignores all output.
type Discard struct{}

func (Discard) Prompt(string)              {}
func (Discard) DisplayStream(string, bool) {}
func (Discard) ShowReasoningIndicator()    {}
func (Discard) HideReasoningIndicator()    {}
func (Discard) ShowCancelled()             {}
