package event

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a stream event type matches no catalogue
// entry. It signals a protocol/catalogue mismatch and is not recoverable.
var ErrUnknownKind = errors.New("unknown event kind")

// Kind enumerates every stream event type of the Responses API taxonomy.
type Kind int

const (
	KindResponseCreated Kind = iota
	KindResponseInProgress
	KindResponseCompleted
	KindResponseFailed
	KindResponseIncomplete
	KindResponseQueued
	KindOutputItemAdded
	KindOutputItemDone
	KindContentPartAdded
	KindContentPartDone
	KindOutputTextDelta
	KindOutputTextAnnotationAdded
	KindOutputTextDone
	KindRefusalDelta
	KindRefusalDone
	KindFunctionCallArgumentsDelta
	KindFunctionCallArgumentsDone
	KindFileSearchCallInProgress
	KindFileSearchCallSearching
	KindFileSearchCallCompleted
	KindWebSearchCallInProgress
	KindWebSearchCallSearching
	KindWebSearchCallCompleted
	KindReasoningSummaryPartAdded
	KindReasoningSummaryPartDone
	KindReasoningSummaryTextDelta
	KindReasoningSummaryTextDone
	KindImageGenerationCallInProgress
	KindImageGenerationCallGenerating
	KindImageGenerationCallPartialImage
	KindImageGenerationCallCompleted
	KindMCPCallArgumentsDelta
	KindMCPCallArgumentsDone
	KindMCPCallInProgress
	KindMCPCallCompleted
	KindMCPCallFailed
	KindMCPListToolsInProgress
	KindMCPListToolsCompleted
	KindMCPListToolsFailed
	KindReasoningDelta
	KindReasoningDone
	KindReasoningSummaryDelta
	KindReasoningSummaryDone
	KindError

	kindCount
)

var kindNames = [kindCount]string{
	KindResponseCreated:                 "response.created",
	KindResponseInProgress:              "response.in_progress",
	KindResponseCompleted:               "response.completed",
	KindResponseFailed:                  "response.failed",
	KindResponseIncomplete:              "response.incomplete",
	KindResponseQueued:                  "response.queued",
	KindOutputItemAdded:                 "response.output_item.added",
	KindOutputItemDone:                  "response.output_item.done",
	KindContentPartAdded:                "response.content_part.added",
	KindContentPartDone:                 "response.content_part.done",
	KindOutputTextDelta:                 "response.output_text.delta",
	KindOutputTextAnnotationAdded:       "response.output_text.annotation.added",
	KindOutputTextDone:                  "response.output_text.done",
	KindRefusalDelta:                    "response.refusal.delta",
	KindRefusalDone:                     "response.refusal.done",
	KindFunctionCallArgumentsDelta:      "response.function_call_arguments.delta",
	KindFunctionCallArgumentsDone:       "response.function_call_arguments.done",
	KindFileSearchCallInProgress:        "response.file_search_call.in_progress",
	KindFileSearchCallSearching:         "response.file_search_call.searching",
	KindFileSearchCallCompleted:         "response.file_search_call.completed",
	KindWebSearchCallInProgress:         "response.web_search_call.in_progress",
	KindWebSearchCallSearching:          "response.web_search_call.searching",
	KindWebSearchCallCompleted:          "response.web_search_call.completed",
	KindReasoningSummaryPartAdded:       "response.reasoning_summary_part.added",
	KindReasoningSummaryPartDone:        "response.reasoning_summary_part.done",
	KindReasoningSummaryTextDelta:       "response.reasoning_summary_text.delta",
	KindReasoningSummaryTextDone:        "response.reasoning_summary_text.done",
	KindImageGenerationCallInProgress:   "response.image_generation_call.in_progress",
	KindImageGenerationCallGenerating:   "response.image_generation_call.generating",
	KindImageGenerationCallPartialImage: "response.image_generation_call.partial_image",
	KindImageGenerationCallCompleted:    "response.image_generation_call.completed",
	KindMCPCallArgumentsDelta:           "response.mcp_call_arguments.delta",
	KindMCPCallArgumentsDone:            "response.mcp_call_arguments.done",
	KindMCPCallInProgress:               "response.mcp_call.in_progress",
	KindMCPCallCompleted:                "response.mcp_call.completed",
	KindMCPCallFailed:                   "response.mcp_call.failed",
	KindMCPListToolsInProgress:          "response.mcp_list_tools.in_progress",
	KindMCPListToolsCompleted:           "response.mcp_list_tools.completed",
	KindMCPListToolsFailed:              "response.mcp_list_tools.failed",
	KindReasoningDelta:                  "response.reasoning.delta",
	KindReasoningDone:                   "response.reasoning.done",
	KindReasoningSummaryDelta:           "response.reasoning_summary.delta",
	KindReasoningSummaryDone:            "response.reasoning_summary.done",
	KindError:                           "error",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k, name := range kindNames {
		m[name] = Kind(k)
	}
	return m
}()

// String returns the wire name of the kind.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind classifies a raw event type string into the catalogue.
func ParseKind(s string) (Kind, error) {
	k, ok := kindsByName[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Kinds returns every catalogued kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}
