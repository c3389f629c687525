// Package turnstream provides a high-level façade over the turn execution
// engine. Most applications interact with this package by:
//  1. Loading settings via config.Load (or starting from config.NewDefaultSettings)
//  2. Creating a Client via New, which wires the OpenAI client, the session
//     store, the resource reconciler and the engine
//  3. Running turns with Ask (synchronous) or Submit (asynchronous)
//
// The façade delegates orchestration to engine.Engine and resource management
// to resource.Reconciler while keeping setup concise. Tests and offline tools
// can replace the streamer or the resource API.
package turnstream

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/turnstream/config"
	"github.com/hupe1980/turnstream/core"
	"github.com/hupe1980/turnstream/engine"
	"github.com/hupe1980/turnstream/logging"
	"github.com/hupe1980/turnstream/model"
	oai "github.com/hupe1980/turnstream/model/openai"
	"github.com/hupe1980/turnstream/resource"
	"github.com/hupe1980/turnstream/session"
)

// Options configures the Client instance.
type Options struct {
	// Settings are the resolved settings. Defaults to config.NewDefaultSettings().
	Settings *config.Settings

	// Streamer overrides the OpenAI streamer, e.g. with model.ScriptedStreamer.
	Streamer model.Streamer

	// ResourceAPI overrides the OpenAI file and vector store endpoints.
	ResourceAPI resource.API

	// SessionStore overrides the store derived from Settings.Storage.
	SessionStore core.SessionStore

	Output   core.OutputSurface
	Channels core.SideChannels
	Listener core.HistoryListener
	Hooks    []engine.Hook

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Client aggregates the engine, the reconciler and the session store.
type Client struct {
	opts       Options
	engine     *engine.Engine
	reconciler *resource.Reconciler
	store      core.SessionStore
}

// New creates a Client. Unset collaborators are derived from Settings.
func New(optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		Settings: config.NewDefaultSettings(),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg, err := opts.Settings.EngineConfig()
	if err != nil {
		return nil, err
	}

	if opts.Streamer == nil || opts.ResourceAPI == nil {
		client := newOpenAIClient(opts.Settings)
		if opts.Streamer == nil {
			opts.Streamer = oai.NewStreamerFromClient(client)
		}
		if opts.ResourceAPI == nil {
			opts.ResourceAPI = oai.NewResources(client)
		}
	}

	if opts.SessionStore == nil {
		store, err := session.NewStore(opts.Settings.Storage.Driver, opts.Settings.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		opts.SessionStore = store
	}

	reconciler := resource.NewReconciler(opts.ResourceAPI, func(o *resource.Options) {
		o.Logger = opts.Logger
	})

	eng := engine.New(opts.Streamer, func(o *engine.Options) {
		o.Config = cfg
		o.Reconciler = reconciler
		o.SessionStore = opts.SessionStore
		if opts.Output != nil {
			o.Output = opts.Output
		}
		if !opts.Channels.IsZero() {
			o.Channels = opts.Channels
		}
		o.Listener = opts.Listener
		o.Hooks = append([]engine.Hook{engine.NewLoggingHook(opts.Logger)}, opts.Hooks...)
		o.Logger = opts.Logger
	})

	return &Client{opts: opts, engine: eng, reconciler: reconciler, store: opts.SessionStore}, nil
}

func newOpenAIClient(s *config.Settings) *openai.Client {
	var reqOpts []option.RequestOption
	if s.OpenAI.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(s.OpenAI.APIKey))
	}
	if s.OpenAI.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(s.OpenAI.BaseURL))
	}
	client := openai.NewClient(reqOpts...)
	return &client
}

// Engine exposes the underlying orchestrator.
func (c *Client) Engine() *engine.Engine { return c.engine }

// Reconciler exposes the resource reconciler.
func (c *Client) Reconciler() *resource.Reconciler { return c.reconciler }

// Sessions exposes the session store.
func (c *Client) Sessions() core.SessionStore { return c.store }

// Ask runs one turn and returns the final answer.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	return c.engine.Execute(ctx, prompt)
}

// Submit runs one turn asynchronously.
func (c *Client) Submit(ctx context.Context, prompt string) <-chan engine.Result {
	return c.engine.Submit(ctx, prompt)
}

// Cancel requests cancellation of the in-flight turn.
func (c *Client) Cancel() bool { return c.engine.Cancel() }

// Close releases the session store when it holds a connection.
func (c *Client) Close() error {
	if closer, ok := c.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
