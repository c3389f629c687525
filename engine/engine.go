package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/turnstream/core"
	"github.com/hupe1980/turnstream/display"
	"github.com/hupe1980/turnstream/event"
	"github.com/hupe1980/turnstream/internal/util"
	"github.com/hupe1980/turnstream/logging"
	"github.com/hupe1980/turnstream/model"
	"github.com/hupe1980/turnstream/resource"
	"github.com/hupe1980/turnstream/session"
)

const (
	// NoItemFound replaces an empty side channel when a turn is finalized.
	NoItemFound = "no item found"
	// Aborted is appended to the partial answer of a cancelled turn.
	Aborted = "Aborted"
)

var (
	// ErrTurnInFlight is returned when Execute is called while another turn
	// of the same engine has not resolved.
	ErrTurnInFlight = errors.New("a turn is already in flight")

	// ErrCancelled marks a turn that ended through cancellation. The turn
	// is finalized like any other; its response ends with Aborted.
	ErrCancelled = errors.New("turn cancelled")

	// ErrStreamClosed is returned when the stream ends without a
	// response.completed event.
	ErrStreamClosed = model.ErrStreamClosed
)

// StreamError is an error reported by the remote API inside the stream.
type StreamError struct {
	Code    string
	Message string
}

func (e *StreamError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Options configures an Engine instance using the functional options pattern.
//
// Every collaborator except the streamer has a default suitable for tests:
// an in-memory session store, a fresh session, discarded output and
// in-memory side channels.
type Options struct {
	// Config holds model settings and feature flags. Defaults to DefaultConfig.
	Config Config

	// Reconciler ensures the file search vector store before each turn.
	// When nil, Config.FileSearch.VectorStoreID is used as is.
	Reconciler *resource.Reconciler

	// SessionStore persists the session after every state changing step.
	SessionStore core.SessionStore

	// Session is the conversation turns are appended to.
	Session *core.Session

	Output   core.OutputSurface
	Channels core.SideChannels

	// Reporter receives failures outside the stream path (saves, hooks).
	Reporter core.ErrorReporter

	// Listener is notified after each finalized turn.
	Listener core.HistoryListener

	// Hooks are registered in order.
	Hooks []Hook

	Logger logging.Logger

	// Now is used for instruction templating.
	Now func() time.Time
}

// Engine is the turn execution orchestrator. It runs one turn at a time:
// build the request, stream it through the event dispatcher and finalize
// the turn as succeeded, failed or cancelled.
//
// The response tracker and cancel token belong to the engine; only the
// in-flight turn mutates them.
type Engine struct {
	streamer   model.Streamer
	reconciler *resource.Reconciler
	store      core.SessionStore
	output     core.OutputSurface
	channels   core.SideChannels
	reporter   core.ErrorReporter
	listener   core.HistoryListener
	hooks      *HookManager
	logger     *logging.TurnLogger
	now        func() time.Time

	tracker *core.ResponseTracker
	token   *core.CancelToken
	running atomic.Bool

	mu            sync.RWMutex
	config        Config
	session       *core.Session
	vectorStoreID string
	cancelFn      context.CancelFunc
}

// New creates an Engine streaming through streamer.
func New(streamer model.Streamer, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:       DefaultConfig,
		SessionStore: session.NewInMemoryStore(),
		Output:       display.Discard{},
		Channels:     display.NewSideChannels(),
		Logger:       logging.NoOpLogger{},
		Now:          time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Session == nil {
		opts.Session = core.NewSession(util.NewID())
	}
	if opts.Reporter == nil {
		opts.Reporter = core.NewLogReporter(opts.Logger)
	}

	hooks := NewHookManager()
	for _, h := range opts.Hooks {
		hooks.Register(h)
	}

	return &Engine{
		streamer:      streamer,
		reconciler:    opts.Reconciler,
		store:         opts.SessionStore,
		output:        opts.Output,
		channels:      opts.Channels,
		reporter:      opts.Reporter,
		listener:      opts.Listener,
		hooks:         hooks,
		logger:        logging.NewTurnLogger(opts.Logger).WithComponent("engine"),
		now:           opts.Now,
		tracker:       core.NewResponseTracker(),
		token:         core.NewCancelToken(),
		config:        opts.Config,
		session:       opts.Session,
		vectorStoreID: opts.Config.FileSearch.VectorStoreID,
	}
}

// Config returns the current configuration.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

// SetConfig replaces the configuration used from the next turn on.
func (e *Engine) SetConfig(cfg Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = cfg
	if cfg.FileSearch.VectorStoreID != "" {
		e.vectorStoreID = cfg.FileSearch.VectorStoreID
	}
}

// Session returns the current session.
func (e *Engine) Session() *core.Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session
}

// Tracker exposes the response tracker.
func (e *Engine) Tracker() *core.ResponseTracker { return e.tracker }

// VectorStoreID returns the last reconciled vector store id.
func (e *Engine) VectorStoreID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vectorStoreID
}

// LoadSession switches to a stored session and resumes its response chain.
func (e *Engine) LoadSession(id string) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrTurnInFlight
	}
	defer e.running.Store(false)

	sess, err := e.store.Load(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.session = sess
	e.mu.Unlock()

	e.tracker.Reset()
	if last := sess.Current(); last != nil && last.Storage {
		e.tracker.Set(last.ResponseID)
	}
	return nil
}

// NewSession starts an empty conversation without a response chain.
func (e *Engine) NewSession() (*core.Session, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrTurnInFlight
	}
	defer e.running.Store(false)

	sess := core.NewSession(util.NewID())
	e.mu.Lock()
	e.session = sess
	e.mu.Unlock()
	e.tracker.Reset()
	return sess, nil
}

// Cancel requests cancellation of the in-flight turn. The token is polled
// before each event; a stream blocked waiting for the next event is woken
// by cancelling its context. It reports whether a turn was running.
func (e *Engine) Cancel() bool {
	armed := e.token.Cancel()
	e.mu.RLock()
	fn := e.cancelFn
	e.mu.RUnlock()
	if fn != nil {
		fn()
		return true
	}
	return armed
}

// Result is the resolved value of Submit.
type Result struct {
	Text string
	Err  error
}

// Submit runs Execute on its own goroutine. The returned channel yields
// exactly one Result and is then closed.
func (e *Engine) Submit(ctx context.Context, prompt string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		text, err := e.Execute(ctx, prompt)
		ch <- Result{Text: text, Err: err}
	}()
	return ch
}

// Execute runs one turn for prompt and returns the final answer text.
//
// A stream error event, a transport failure, an unknown event kind or a
// stream ending without completion finalize the turn through the error
// path and are returned. A cancelled turn returns its partial response and
// ErrCancelled.
func (e *Engine) Execute(ctx context.Context, prompt string) (string, error) {
	if !e.running.CompareAndSwap(false, true) {
		return "", ErrTurnInFlight
	}
	defer e.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancelFn = cancel
	cfg := e.config
	sess := e.session
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.cancelFn = nil
		e.mu.Unlock()
		cancel()
	}()

	turn := &core.ChatTurn{ID: util.NewID(), Prompt: prompt, Storage: true}
	sess.AddTurn(turn)
	log := e.logger.WithTurn(sess.ID, turn.ID)

	req := BuildRequest(RequestInput{
		Config:             cfg,
		Prompt:             prompt,
		Instructions:       e.instructions(cfg, sess, log),
		PreviousResponseID: e.tracker.Get(),
		Storage:            turn.Storage,
		VectorStoreID:      e.vectorStore(ctx, cfg, log),
	})

	run := &turnRun{
		engine:  e,
		session: sess,
		turn:    turn,
		ctx:     ctx,
		dispatcher: &event.Dispatcher{
			Turn:     turn,
			Tracker:  e.tracker,
			Output:   e.output,
			Channels: e.channels,
		},
	}

	// Side channels still hold the previous turn until OnStart; a vetoed
	// turn must not settle that content.
	e.channels.ClearAll()

	hctx := &HookContext{Session: sess, Turn: turn, Request: &req}
	if err := e.hooks.Execute(ctx, HookBeforeRequest, hctx); err != nil {
		err = fmt.Errorf("before request: %w", err)
		e.snapshot(turn, req)
		run.onError(err)
		return "", err
	}

	e.snapshot(turn, req)
	e.save(sess)

	log.Debug("turn started", "model", req.Model, "tools", len(req.Tools), "chained", req.PreviousResponseID != "")
	start := time.Now()
	outcome, err := model.Drive(ctx, e.streamer, req, run.callbacks(prompt))

	hctx.Outcome, hctx.Err, hctx.Events, hctx.Duration = outcome, err, run.events, time.Since(start)
	// The parent context may be gone already; hooks still see the result.
	if herr := e.hooks.Execute(context.WithoutCancel(ctx), HookAfterTurn, hctx); herr != nil {
		e.reporter.Report(fmt.Errorf("after turn hook: %w", herr))
	}

	switch outcome {
	case model.Succeeded:
		return run.final, nil
	case model.Cancelled:
		return turn.Response, ErrCancelled
	default:
		return "", err
	}
}

// instructions renders the instruction template; a broken template is
// sent verbatim.
func (e *Engine) instructions(cfg Config, sess *core.Session, log *logging.TurnLogger) string {
	out, err := util.RenderInstructions(cfg.Instructions, util.InstructionData{
		Date:  e.now().Format("2006-01-02"),
		Title: sess.Title,
	})
	if err != nil {
		log.Warn("instruction template failed", "error", err)
		return cfg.Instructions
	}
	return out
}

// vectorStore returns the vector store id for file search, reconciling it
// when a reconciler is configured. Failures were already reported by the
// reconciler; the turn then continues without file search.
func (e *Engine) vectorStore(ctx context.Context, cfg Config, log *logging.TurnLogger) string {
	if cfg.Flags.Reasoning || cfg.Flags.DisableFileSearch {
		return ""
	}
	known := e.VectorStoreID()
	if e.reconciler == nil {
		return known
	}
	if known == "" && cfg.FileSearch.VectorStoreName == "" {
		return ""
	}
	done := log.StartTimer("ensure vector store")
	id, err := e.reconciler.EnsureVectorStore(ctx, cfg.FileSearch.VectorStoreName, known)
	done()
	if err != nil {
		log.Warn("file search disabled for this turn", "error", err)
		return ""
	}
	e.mu.Lock()
	e.vectorStoreID = id
	e.mu.Unlock()
	return id
}

func (e *Engine) snapshot(turn *core.ChatTurn, req model.Request) {
	raw, err := json.Marshal(req)
	if err != nil {
		e.reporter.Report(fmt.Errorf("snapshot request: %w", err))
		return
	}
	turn.Request = string(raw)
}

func (e *Engine) save(sess *core.Session) {
	if err := e.store.Save(sess); err != nil {
		e.reporter.Report(fmt.Errorf("save session %s: %w", sess.ID, err))
	}
}

// finalize settles the side channels into the turn, disarms the token,
// persists the session and notifies the listener.
func (e *Engine) finalize(sess *core.Session, turn *core.ChatTurn, stopped bool) {
	turn.FileSearch = settle(e.channels.FileSearch)
	turn.WebSearch = settle(e.channels.WebSearch)
	turn.Reasoning = settle(e.channels.Reasoning)
	e.token.Disarm(stopped)
	sess.Touch()
	e.save(sess)
	if e.listener != nil {
		e.listener.SessionChanged(sess)
	}
}

func settle(ch core.SideChannel) string {
	if ch == nil {
		return NoItemFound
	}
	if ch.IsEmpty() {
		ch.Clear()
		ch.Display(NoItemFound)
	}
	return ch.Text()
}

// turnRun is the state of one Execute call. The buffer lives here and is
// handed to the dispatcher by pointer only.
type turnRun struct {
	engine     *Engine
	session    *core.Session
	turn       *core.ChatTurn
	ctx        context.Context
	dispatcher *event.Dispatcher
	buf        event.Buffer
	events     int
	final      string
}

func (r *turnRun) callbacks(prompt string) model.Callbacks {
	e := r.engine
	return model.Callbacks{
		OnStart: func() {
			e.token.Reset()
			e.channels.ClearAll()
			e.output.Prompt(prompt)
		},
		OnProgress:     r.onProgress,
		OnError:        r.onError,
		OnShouldCancel: r.shouldCancel,
		OnCancelled:    r.onCancelled,
	}
}

func (r *turnRun) onProgress(ev event.Event) (bool, error) {
	r.events++
	cont, err := r.dispatcher.Dispatch(ev, &r.buf)
	if err != nil {
		return false, err
	}
	if !cont {
		return false, &StreamError{Code: ev.ErrorCode(), Message: ev.ErrorMessage()}
	}
	switch ev.Type {
	case event.KindResponseCompleted.String():
		r.succeed(ev)
		return true, nil
	case event.KindResponseFailed.String():
		// A failed response never completes; surface its error now.
		return false, &StreamError{Code: ev.ErrorCode(), Message: ev.ErrorMessage()}
	}
	return false, nil
}

func (r *turnRun) succeed(ev event.Event) {
	r.final = model.OutputText(ev.Response())
	switch {
	case r.final != "":
		r.turn.Response = r.final
	case r.turn.Response == "":
		r.turn.Response = r.buf.String()
	}
	r.engine.output.HideReasoningIndicator()
	r.engine.output.DisplayStream(r.final, true)
	r.engine.finalize(r.session, r.turn, false)
}

func (r *turnRun) onError(err error) {
	e := r.engine
	r.turn.Response = r.buf.String() + "\n\n" + err.Error()
	e.output.HideReasoningIndicator()
	e.finalize(r.session, r.turn, true)
	e.tracker.Reset()
}

func (r *turnRun) shouldCancel() bool {
	if !r.engine.token.Cancelled() && r.ctx.Err() == nil {
		return false
	}
	r.engine.output.HideReasoningIndicator()
	r.engine.output.ShowCancelled()
	return true
}

func (r *turnRun) onCancelled() {
	e := r.engine
	r.turn.Response = r.buf.String() + "\n\n" + Aborted
	e.finalize(r.session, r.turn, true)
	// Only a response the server already created may be chained from.
	if r.turn.ResponseID == "" {
		e.tracker.Reset()
	}
}
