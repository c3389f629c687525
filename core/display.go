package core

// SideChannel is a display sink for one auxiliary result category.
type SideChannel interface {
	Clear()
	Display(text string)
	IsEmpty() bool
	Text() string
}

// SideChannels groups the three side channel sinks of a turn.
type SideChannels struct {
	FileSearch SideChannel
	WebSearch  SideChannel
	Reasoning  SideChannel
}

// IsZero reports whether no channel is set.
func (s SideChannels) IsZero() bool {
	return s.FileSearch == nil && s.WebSearch == nil && s.Reasoning == nil
}

// ClearAll clears every non-nil channel.
func (s SideChannels) ClearAll() {
	for _, c := range []SideChannel{s.FileSearch, s.WebSearch, s.Reasoning} {
		if c != nil {
			c.Clear()
		}
	}
}

// OutputSurface receives the main answer while it streams.
type OutputSurface interface {
	// Prompt signals that a new turn begins with the given prompt.
	Prompt(text string)
	// DisplayStream renders one chunk; final is true once the answer is complete.
	DisplayStream(text string, final bool)
	ShowReasoningIndicator()
	HideReasoningIndicator()
	// ShowCancelled replaces the in-progress indicator with a cancellation notice.
	ShowCancelled()
}
