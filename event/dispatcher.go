package event

import (
	"fmt"
	"strings"

	"github.com/hupe1980/turnstream/core"
)

// messageItemType is the output item type of the answer message.
const messageItemType = "message"

// Item id prefixes used to route output_item.done snapshots.
const (
	messageItemPrefix    = "msg_"
	fileSearchItemPrefix = "fs_"
	webSearchItemPrefix  = "ws_"
)

// Buffer accumulates the answer text of one stream invocation plus the
// number of chunks forwarded to the output surface.
type Buffer struct {
	text      strings.Builder
	Displayed int
}

// Append adds s to the accumulated text.
func (b *Buffer) Append(s string) { b.text.WriteString(s) }

// String returns the text assembled so far.
func (b *Buffer) String() string { return b.text.String() }

// Len returns the byte length of the accumulated text.
func (b *Buffer) Len() int { return b.text.Len() }

// Dispatcher routes events of one in-flight turn to their handlers. All
// fields are owned by that turn for the duration of the stream.
type Dispatcher struct {
	Turn     *core.ChatTurn
	Tracker  *core.ResponseTracker
	Output   core.OutputSurface
	Channels core.SideChannels
}

type handlerFunc func(d *Dispatcher, ev Event, buf *Buffer) bool

// handlerFor is the total mapping from kind to handler. Every catalogued
// kind has exactly one entry.
func handlerFor(k Kind) handlerFunc {
	switch k {
	case KindResponseCreated:
		return (*Dispatcher).onCreated
	case KindOutputTextDelta:
		return (*Dispatcher).onTextDelta
	case KindOutputTextDone:
		return (*Dispatcher).onTextDone
	case KindOutputTextAnnotationAdded:
		return (*Dispatcher).onAnnotation
	case KindOutputItemAdded:
		return (*Dispatcher).onItemAdded
	case KindOutputItemDone:
		return (*Dispatcher).onItemDone
	case KindReasoningSummaryPartAdded:
		return (*Dispatcher).onReasoningPart
	case KindReasoningSummaryTextDelta:
		return (*Dispatcher).onReasoningDelta
	case KindReasoningSummaryTextDone:
		return (*Dispatcher).onReasoningDone
	case KindError:
		return (*Dispatcher).onError
	case KindResponseInProgress, KindResponseCompleted, KindResponseFailed,
		KindResponseIncomplete, KindResponseQueued,
		KindContentPartAdded, KindContentPartDone,
		KindRefusalDelta, KindRefusalDone,
		KindFunctionCallArgumentsDelta, KindFunctionCallArgumentsDone,
		KindFileSearchCallInProgress, KindFileSearchCallSearching, KindFileSearchCallCompleted,
		KindWebSearchCallInProgress, KindWebSearchCallSearching, KindWebSearchCallCompleted,
		KindReasoningSummaryPartDone,
		KindImageGenerationCallInProgress, KindImageGenerationCallGenerating,
		KindImageGenerationCallPartialImage, KindImageGenerationCallCompleted,
		KindMCPCallArgumentsDelta, KindMCPCallArgumentsDone,
		KindMCPCallInProgress, KindMCPCallCompleted, KindMCPCallFailed,
		KindMCPListToolsInProgress, KindMCPListToolsCompleted, KindMCPListToolsFailed,
		KindReasoningDelta, KindReasoningDone,
		KindReasoningSummaryDelta, KindReasoningSummaryDone:
		return (*Dispatcher).onIgnored
	}
	return nil
}

// Dispatch classifies ev, runs its handler and returns whether the stream
// should continue. An event type outside the catalogue fails with
// ErrUnknownKind; a catalogued kind without a handler continues.
func (d *Dispatcher) Dispatch(ev Event, buf *Buffer) (bool, error) {
	k, err := ParseKind(ev.Type)
	if err != nil {
		return false, err
	}
	h := handlerFor(k)
	if h == nil {
		return true, nil
	}
	return h(d, ev, buf), nil
}

func (d *Dispatcher) onIgnored(Event, *Buffer) bool { return true }

func (d *Dispatcher) onCreated(ev Event, _ *Buffer) bool {
	id := ev.ResponseID()
	if d.Turn != nil {
		d.Turn.ResponseID = id
	}
	if d.Tracker != nil {
		d.Tracker.Set(id)
	}
	return true
}

func (d *Dispatcher) onTextDelta(ev Event, buf *Buffer) bool {
	delta := ev.Delta()
	buf.Append(delta)
	if d.Output != nil {
		d.Output.DisplayStream(delta, false)
	}
	buf.Displayed++
	return true
}

func (d *Dispatcher) onTextDone(ev Event, _ *Buffer) bool {
	if d.Turn != nil && d.Turn.Response == "" {
		d.Turn.Response = ev.Text()
	}
	return true
}

func (d *Dispatcher) onAnnotation(ev Event, _ *Buffer) bool {
	a := ev.Annotation()
	if a.HasURL() && d.Channels.WebSearch != nil {
		d.Channels.WebSearch.Display(fmt.Sprintf("## %s\n- URL: %s\n- Offsets: %d-%d\n\n",
			a.Title, a.URL, a.StartIndex, a.EndIndex))
	}
	if a.HasFile() && d.Channels.FileSearch != nil {
		d.Channels.FileSearch.Display(fmt.Sprintf("## %s\n- Index: %d\n- File ID: %s\n\n",
			a.Filename, a.Index, a.FileID))
	}
	return true
}

// onItemAdded hides the reasoning indicator once the answer message starts.
func (d *Dispatcher) onItemAdded(ev Event, _ *Buffer) bool {
	if ev.ItemType() == messageItemType && d.Output != nil {
		d.Output.HideReasoningIndicator()
	}
	return true
}

func (d *Dispatcher) onItemDone(ev Event, _ *Buffer) bool {
	if d.Turn == nil {
		return true
	}
	id := ev.ItemID()
	item := ev.Item()
	switch {
	case strings.HasPrefix(id, messageItemPrefix):
		if d.Turn.RawResponse == "" {
			d.Turn.RawResponse = item
		}
	case strings.HasPrefix(id, fileSearchItemPrefix):
		if d.Turn.FileSearchRaw == "" {
			d.Turn.FileSearchRaw = item
		}
	case strings.HasPrefix(id, webSearchItemPrefix):
		if d.Turn.WebSearchRaw == "" {
			d.Turn.WebSearchRaw = item
		}
	}
	return true
}

func (d *Dispatcher) onReasoningPart(Event, *Buffer) bool {
	if d.Output != nil {
		d.Output.ShowReasoningIndicator()
	}
	return true
}

func (d *Dispatcher) onReasoningDelta(ev Event, _ *Buffer) bool {
	if d.Channels.Reasoning != nil {
		d.Channels.Reasoning.Display(ev.Delta())
	}
	return true
}

func (d *Dispatcher) onReasoningDone(Event, *Buffer) bool {
	if d.Channels.Reasoning != nil {
		d.Channels.Reasoning.Display("\n\n")
	}
	return true
}

func (d *Dispatcher) onError(_ Event, buf *Buffer) bool {
	if d.Turn != nil {
		d.Turn.Response = buf.String()
	}
	return false
}
