package engine

import (
	"strings"
	"time"

	"github.com/hupe1980/turnstream/model"
)

// Flags are the feature toggles that shape a request.
type Flags struct {
	// Reasoning switches to the reasoning model; no tools are attached.
	Reasoning bool
	// WebSearch attaches the hosted web search tool.
	WebSearch bool
	// DisableFileSearch suppresses the file search tool even when a vector
	// store is available.
	DisableFileSearch bool
}

// WebSearchConfig tunes the web search tool.
type WebSearchConfig struct {
	ContextSize string
	Location    model.UserLocation
}

// FileSearchConfig names the vector store backing the file search tool.
type FileSearchConfig struct {
	VectorStoreName string
	VectorStoreID   string
	MaxResults      int64
}

// Config defines the model settings and feature flags used to build each
// request. It is read once per turn.
type Config struct {
	// SearchModel is used for every turn unless reasoning is enabled.
	SearchModel string
	// ReasoningModel is used when Flags.Reasoning is set.
	ReasoningModel   string
	ReasoningEffort  string
	ReasoningSummary string

	// Instructions is the system/developer text. It may reference
	// {{.Date}} and {{.Title}}.
	Instructions string

	// Timeout bounds one streamed request; zero keeps the client default.
	Timeout time.Duration

	Flags      Flags
	WebSearch  WebSearchConfig
	FileSearch FileSearchConfig
}

// DefaultConfig provides defaults matching a plain search setup with
// every optional feature off.
var DefaultConfig = Config{
	SearchModel:      "gpt-4o",
	ReasoningModel:   "o4-mini",
	ReasoningEffort:  "medium",
	ReasoningSummary: "auto",
	Timeout:          5 * time.Minute,
	WebSearch:        WebSearchConfig{ContextSize: "medium"},
	FileSearch:       FileSearchConfig{VectorStoreName: "turnstream", MaxResults: 10},
}

// RequestInput gathers everything BuildRequest depends on.
type RequestInput struct {
	Config Config
	Prompt string
	// Instructions is the rendered instruction text.
	Instructions string
	// PreviousResponseID comes from the response tracker.
	PreviousResponseID string
	// Storage marks the turn for persistence; only persisted turns chain.
	Storage bool
	// VectorStoreID is the reconciled store id, "" when none is ready.
	VectorStoreID string
}

// supportsToolChoice reports whether model accepts the explicit hosted tool
// choice override. The gpt-5 family configures response detail itself.
func supportsToolChoice(m string) bool {
	return !strings.HasPrefix(strings.ToLower(m), "gpt-5")
}

// BuildRequest derives the outgoing request from its inputs. It has no side
// effects.
//
// Tool policy: reasoning mode attaches no tools. Otherwise file search is
// attached when it is not disabled and a vector store is ready, and web
// search when its flag is set. The tool choice override is set only for an
// attached web search tool on models that accept it.
func BuildRequest(in RequestInput) model.Request {
	cfg := in.Config
	req := model.Request{
		Model:        cfg.SearchModel,
		Input:        in.Prompt,
		Instructions: in.Instructions,
		Tools:        []model.Tool{},
		Stream:       true,
		Store:        in.Storage,
		Timeout:      cfg.Timeout,
	}
	if in.Storage && in.PreviousResponseID != "" {
		req.PreviousResponseID = in.PreviousResponseID
	}

	if cfg.Flags.Reasoning {
		req.Model = cfg.ReasoningModel
		req.Reasoning = &model.Reasoning{Effort: cfg.ReasoningEffort, Summary: cfg.ReasoningSummary}
		return req
	}

	if !cfg.Flags.DisableFileSearch && in.VectorStoreID != "" {
		req.Tools = append(req.Tools, model.Tool{
			Type:           model.ToolFileSearch,
			VectorStoreIDs: []string{in.VectorStoreID},
			MaxNumResults:  cfg.FileSearch.MaxResults,
		})
	}
	if cfg.Flags.WebSearch {
		tool := model.Tool{Type: model.ToolWebSearch, SearchContextSize: cfg.WebSearch.ContextSize}
		if !cfg.WebSearch.Location.IsZero() {
			loc := cfg.WebSearch.Location
			tool.UserLocation = &loc
		}
		req.Tools = append(req.Tools, tool)
		if supportsToolChoice(req.Model) {
			req.ToolChoice = model.ToolWebSearch
		}
	}
	return req
}
