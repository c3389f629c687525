// Package openai provides implementations of model.Streamer and
// resource.API backed by the OpenAI Responses, Files and Vector Stores APIs.
// It adapts turnstream's normalized Request into the SDK's parameter types
// and hands raw stream events back untouched.
package openai

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/hupe1980/turnstream/event"
	"github.com/hupe1980/turnstream/model"
)

var _ model.Streamer = (*Streamer)(nil)

// Options configure the OpenAI adapters.
type Options struct {
	// RequestOptions are appended to every SDK call.
	RequestOptions []option.RequestOption
}

// Streamer opens Responses API streams.
type Streamer struct {
	client *openai.Client
	opts   Options
}

// NewStreamer creates a Streamer using the official client configured from
// the environment.
func NewStreamer(optFns ...func(o *Options)) *Streamer {
	client := openai.NewClient()
	return NewStreamerFromClient(&client, optFns...)
}

// NewStreamerFromClient creates a Streamer from an existing client.
func NewStreamerFromClient(client *openai.Client, optFns ...func(o *Options)) *Streamer {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Streamer{client: client, opts: opts}
}

// Stream implements model.Streamer. A non-zero req.Timeout bounds the
// whole request.
func (s *Streamer) Stream(ctx context.Context, req model.Request) model.Stream {
	reqOpts := append([]option.RequestOption(nil), s.opts.RequestOptions...)
	if req.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(req.Timeout))
	}
	return &stream{inner: s.client.Responses.NewStreaming(ctx, buildParams(req), reqOpts...)}
}

// stream adapts the SDK event stream to model.Stream using the raw event JSON.
type stream struct {
	inner *ssestream.Stream[responses.ResponseStreamEventUnion]
}

func (s *stream) Next() bool { return s.inner.Next() }

func (s *stream) Current() event.Event { return event.New(s.inner.Current().RawJSON()) }

func (s *stream) Err() error { return s.inner.Err() }

func (s *stream) Close() error { return s.inner.Close() }

// buildParams converts the normalized request into Responses API parameters.
func buildParams(req model.Request) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(req.Model),
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(req.Input)},
		Store: openai.Bool(req.Store),
	}
	if req.Instructions != "" {
		params.Instructions = openai.String(req.Instructions)
	}
	if req.PreviousResponseID != "" {
		params.PreviousResponseID = openai.String(req.PreviousResponseID)
	}
	if req.Reasoning != nil {
		params.Reasoning = shared.ReasoningParam{
			Effort:  shared.ReasoningEffort(req.Reasoning.Effort),
			Summary: shared.ReasoningSummary(req.Reasoning.Summary),
		}
	}
	for _, t := range req.Tools {
		if tool, ok := buildTool(t); ok {
			params.Tools = append(params.Tools, tool)
		}
	}
	if req.ToolChoice != "" {
		params.ToolChoice = responses.ResponseNewParamsToolChoiceUnion{
			OfHostedTool: &responses.ToolChoiceTypesParam{Type: responses.ToolChoiceTypesType(req.ToolChoice)},
		}
	}
	return params
}

func buildTool(t model.Tool) (responses.ToolUnionParam, bool) {
	switch t.Type {
	case model.ToolFileSearch:
		fs := &responses.FileSearchToolParam{VectorStoreIDs: t.VectorStoreIDs}
		if t.MaxNumResults > 0 {
			fs.MaxNumResults = openai.Int(t.MaxNumResults)
		}
		return responses.ToolUnionParam{OfFileSearch: fs}, true
	case model.ToolWebSearch:
		ws := &responses.WebSearchToolParam{Type: responses.WebSearchToolTypeWebSearchPreview}
		if t.SearchContextSize != "" {
			ws.SearchContextSize = responses.WebSearchToolSearchContextSize(t.SearchContextSize)
		}
		if loc := t.UserLocation; loc != nil && !loc.IsZero() {
			ws.UserLocation = buildLocation(*loc)
		}
		return responses.ToolUnionParam{OfWebSearchPreview: ws}, true
	default:
		return responses.ToolUnionParam{}, false
	}
}

func buildLocation(loc model.UserLocation) responses.WebSearchToolUserLocationParam {
	var p responses.WebSearchToolUserLocationParam
	if loc.City != "" {
		p.City = openai.String(loc.City)
	}
	if loc.Country != "" {
		p.Country = openai.String(loc.Country)
	}
	if loc.Region != "" {
		p.Region = openai.String(loc.Region)
	}
	if loc.Timezone != "" {
		p.Timezone = openai.String(loc.Timezone)
	}
	return p
}
