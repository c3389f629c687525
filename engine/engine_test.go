package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/turnstream/core"
	"github.com/hupe1980/turnstream/display"
	"github.com/hupe1980/turnstream/event"
	"github.com/hupe1980/turnstream/internal/testutil"
	"github.com/hupe1980/turnstream/logging"
	"github.com/hupe1980/turnstream/model"
	"github.com/hupe1980/turnstream/resource"
	"github.com/hupe1980/turnstream/session"
)

type harness struct {
	streamer *model.ScriptedStreamer
	store    *session.InMemoryStore
	output   *display.Recorder
	channels core.SideChannels
	reported *core.Collector
	engine   *Engine
}

func newHarness(streamer *model.ScriptedStreamer, optFns ...func(o *Options)) *harness {
	h := &harness{
		streamer: streamer,
		store:    session.NewInMemoryStore(),
		output:   &display.Recorder{},
		channels: display.NewSideChannels(),
		reported: &core.Collector{},
	}
	base := func(o *Options) {
		o.SessionStore = h.store
		o.Output = h.output
		o.Channels = h.channels
		o.Reporter = h.reported
		o.Session = core.NewSession("sess-1")
	}
	h.engine = New(streamer, append([]func(o *Options){base}, optFns...)...)
	return h
}

func (h *harness) turn() *core.ChatTurn { return h.engine.Session().Current() }

func assertFinalized(t *testing.T, h *harness) {
	t.Helper()
	turn := h.turn()
	require.NotNil(t, turn)
	assert.NotEmpty(t, turn.FileSearch)
	assert.NotEmpty(t, turn.WebSearch)
	assert.NotEmpty(t, turn.Reasoning)
	assert.GreaterOrEqual(t, h.store.Saves(), 2)
	assert.False(t, h.engine.token.Armed())

	stored, err := h.store.Load("sess-1")
	require.NoError(t, err)
	assert.Equal(t, turn.Response, stored.Current().Response)
}

func TestExecute_HelloScenario(t *testing.T) {
	h := newHarness(model.NewScriptedStreamer(
		testutil.Created("resp_1"),
		testutil.Delta("Hel"),
		testutil.Delta("lo"),
		testutil.Completed("resp_1", "Hel", "lo"),
	))

	answer, err := h.engine.Execute(context.Background(), "Say hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello", answer)

	turn := h.turn()
	assert.Equal(t, "Hello", turn.Response)
	assert.Equal(t, "resp_1", turn.ResponseID)
	assert.True(t, turn.Storage)
	assert.Equal(t, "resp_1", h.engine.Tracker().Get())
	assert.Equal(t, NoItemFound, turn.FileSearch)
	assert.Equal(t, NoItemFound, turn.WebSearch)
	assert.Equal(t, NoItemFound, turn.Reasoning)
	assert.Equal(t, []string{"Say hello"}, h.output.Prompts)
	assert.Equal(t, "Hello", h.output.Streamed())
	assert.Equal(t, 1, h.output.Finals)
	assert.Equal(t, "Say hello", h.engine.Session().Title)
	assertFinalized(t, h)
}

func TestExecute_ChainsPreviousResponse(t *testing.T) {
	h := newHarness(model.NewScriptedStreamer(testutil.Created("resp_1"), testutil.Completed("resp_1", "ok")))

	_, err := h.engine.Execute(context.Background(), "one")
	require.NoError(t, err)
	_, err = h.engine.Execute(context.Background(), "two")
	require.NoError(t, err)

	reqs := h.streamer.Requests()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].PreviousResponseID)
	assert.Equal(t, "resp_1", reqs[1].PreviousResponseID)
	assert.Equal(t, 2, h.engine.Session().Len())
}

func TestExecute_CancelMidStream(t *testing.T) {
	s := model.NewScriptedStreamer(
		testutil.Created("resp_1"),
		testutil.Delta("Hel"),
		testutil.Delta("lo"),
		testutil.Delta(" world"),
		testutil.Completed("resp_1", "Hello world"),
	)
	h := newHarness(s)
	s.BeforeEvent = func(i int) {
		if i == 2 {
			assert.True(t, h.engine.Cancel())
		}
	}

	text, err := h.engine.Execute(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, "Hello\n\nAborted", text)
	assert.Equal(t, "Hello\n\nAborted", h.turn().Response)
	assert.True(t, h.output.Cancelled)
	assert.Equal(t, 0, h.output.Finals)
	// The server already created resp_1, so it stays chainable.
	assert.Equal(t, "resp_1", h.engine.Tracker().Get())
	assertFinalized(t, h)
}

func TestExecute_CancelBeforeCreationDropsChain(t *testing.T) {
	s := model.NewScriptedStreamer(testutil.Delta("Hel"), testutil.Delta("lo"), testutil.Completed("resp_2", "Hello"))
	h := newHarness(s)
	h.engine.Tracker().Set("resp_old")
	s.BeforeEvent = func(i int) {
		if i == 1 {
			h.engine.Cancel()
		}
	}

	_, err := h.engine.Execute(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, "Hello\n\nAborted", h.turn().Response)
	assert.Empty(t, h.engine.Tracker().Get())
	assertFinalized(t, h)
}

func TestExecute_ParentContextCancelIsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := model.NewScriptedStreamer(testutil.Delta("a"), testutil.Delta("b"))
	s.BeforeEvent = func(i int) {
		if i == 1 {
			cancel()
		}
	}
	h := newHarness(s)

	_, err := h.engine.Execute(ctx, "hi")
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, "ab\n\nAborted", h.turn().Response)
}

func TestExecute_StreamErrorEvent(t *testing.T) {
	h := newHarness(model.NewScriptedStreamer(
		testutil.Created("resp_1"),
		testutil.Delta("partial"),
		testutil.Error("server_error", "boom"),
		testutil.Completed("resp_1", "never"),
	))

	_, err := h.engine.Execute(context.Background(), "hi")
	var serr *StreamError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "server_error", serr.Code)
	assert.Equal(t, "partial\n\nserver_error: boom", h.turn().Response)
	assert.Empty(t, h.engine.Tracker().Get(), "a failed turn must not be chained from")
	assertFinalized(t, h)
}

func TestExecute_FailedResponse(t *testing.T) {
	failed := testutil.NewEventBuilder("response.failed").Response(map[string]any{
		"id":    "resp_1",
		"error": map[string]any{"code": "rate_limit_exceeded", "message": "slow down"},
	}).Build()
	h := newHarness(model.NewScriptedStreamer(testutil.Created("resp_1"), failed))

	_, err := h.engine.Execute(context.Background(), "hi")
	var serr *StreamError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "rate_limit_exceeded", serr.Code)
	assert.Empty(t, h.engine.Tracker().Get())
}

func TestExecute_TransportFailure(t *testing.T) {
	boom := errors.New("connection reset")
	h := newHarness(model.NewScriptedStreamer(testutil.Delta("par")).FailWith(boom))

	_, err := h.engine.Execute(context.Background(), "hi")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "par\n\nconnection reset", h.turn().Response)
	assertFinalized(t, h)
}

func TestExecute_StreamClosedWithoutCompletion(t *testing.T) {
	h := newHarness(model.NewScriptedStreamer(testutil.Delta("par")))

	_, err := h.engine.Execute(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrStreamClosed)
	assertFinalized(t, h)
}

func TestExecute_UnknownKindFailsTurn(t *testing.T) {
	h := newHarness(model.NewScriptedStreamer(testutil.NewEventBuilder("response.brand_new").Build()))

	_, err := h.engine.Execute(context.Background(), "hi")
	assert.ErrorIs(t, err, event.ErrUnknownKind)
	assert.True(t, strings.HasPrefix(h.turn().Response, "\n\n"))
	assertFinalized(t, h)
}

func TestExecute_SideChannelContentIsKept(t *testing.T) {
	ann := testutil.NewEventBuilder("response.output_text.annotation.added").Annotation(map[string]any{
		"type": "file_citation", "file_id": "file-1", "filename": "notes.md", "index": 0,
	}).Build()
	h := newHarness(model.NewScriptedStreamer(ann, testutil.Completed("resp_1", "see notes")))

	_, err := h.engine.Execute(context.Background(), "hi")
	require.NoError(t, err)
	assert.Contains(t, h.turn().FileSearch, "notes.md")
	assert.Equal(t, NoItemFound, h.turn().WebSearch)
}

func TestExecute_TwoPlusTwoScenario(t *testing.T) {
	h := newHarness(model.NewScriptedStreamer(testutil.Completed("resp_1", "4")))

	answer, err := h.engine.Execute(context.Background(), "2+2?")
	require.NoError(t, err)
	assert.Equal(t, "4", answer)

	reqs := h.streamer.Requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Tools)
	assert.Empty(t, reqs[0].ToolChoice)
	assert.Equal(t, DefaultConfig.SearchModel, reqs[0].Model)
	assert.True(t, reqs[0].Stream)

	snapshot := h.turn().Request
	assert.Contains(t, snapshot, `"tools":[]`)
	assert.Contains(t, snapshot, `"input":"2+2?"`)
	assert.NotContains(t, snapshot, "tool_choice")
}

func TestExecute_TurnInFlight(t *testing.T) {
	s := model.NewScriptedStreamer(testutil.Delta("a"), testutil.Completed("resp_1", "a"))
	h := newHarness(s)
	var nested error
	s.BeforeEvent = func(i int) {
		if i == 0 {
			_, nested = h.engine.Execute(context.Background(), "second")
		}
	}

	_, err := h.engine.Execute(context.Background(), "first")
	require.NoError(t, err)
	assert.ErrorIs(t, nested, ErrTurnInFlight)
	assert.Equal(t, 1, h.engine.Session().Len())
}

func TestSubmit_ResolvesOnce(t *testing.T) {
	h := newHarness(model.NewScriptedStreamer(testutil.Completed("resp_1", "done")))

	ch := h.engine.Submit(context.Background(), "hi")
	select {
	case res := <-ch:
		require.NoError(t, res.Err)
		assert.Equal(t, "done", res.Text)
	case <-time.After(5 * time.Second):
		t.Fatal("submit did not resolve")
	}
	_, open := <-ch
	assert.False(t, open)
}

func TestHooks(t *testing.T) {
	var after *HookContext
	veto := NewFunctionHook(HookBeforeRequest, func(_ context.Context, h *HookContext) error {
		if h.Turn.Prompt == "forbidden" {
			return errors.New("blocked")
		}
		h.Request.Instructions = "be brief"
		return nil
	})
	record := NewFunctionHook(HookAfterTurn, func(_ context.Context, h *HookContext) error {
		after = h
		return nil
	})
	h := newHarness(model.NewScriptedStreamer(testutil.Completed("resp_1", "ok")), func(o *Options) {
		o.Hooks = []Hook{veto, record}
	})

	_, err := h.engine.Execute(context.Background(), "forbidden")
	assert.Error(t, err)
	assert.Empty(t, h.streamer.Requests())
	assert.Contains(t, h.turn().Response, "blocked")

	_, err = h.engine.Execute(context.Background(), "fine")
	require.NoError(t, err)
	require.Len(t, h.streamer.Requests(), 1)
	assert.Equal(t, "be brief", h.streamer.Requests()[0].Instructions)
	require.NotNil(t, after)
	assert.Equal(t, model.Succeeded, after.Outcome)
	assert.Equal(t, 1, after.Events)
}

func TestHooks_VetoedTurnKeepsOwnSideChannels(t *testing.T) {
	ann := testutil.NewEventBuilder("response.output_text.annotation.added").Annotation(map[string]any{
		"type": "url_citation", "url": "https://example.com", "title": "EX", "start_index": 0, "end_index": 4,
	}).Build()
	veto := NewFunctionHook(HookBeforeRequest, func(_ context.Context, h *HookContext) error {
		if h.Turn.Prompt == "forbidden" {
			return errors.New("blocked")
		}
		return nil
	})
	h := newHarness(model.NewScriptedStreamer(ann, testutil.Completed("resp_1", "ok")), func(o *Options) {
		o.Hooks = []Hook{veto}
	})

	_, err := h.engine.Execute(context.Background(), "search")
	require.NoError(t, err)
	first := h.turn()
	require.Contains(t, first.WebSearch, "https://example.com")

	_, err = h.engine.Execute(context.Background(), "forbidden")
	require.Error(t, err)
	second := h.turn()
	require.NotSame(t, first, second)
	assert.Equal(t, NoItemFound, second.WebSearch)
	assert.Equal(t, NoItemFound, second.FileSearch)
	assert.Equal(t, NoItemFound, second.Reasoning)
	assert.Contains(t, second.Request, `"input":"forbidden"`)
	assert.Contains(t, first.WebSearch, "https://example.com")

	stored, err := h.store.Load("sess-1")
	require.NoError(t, err)
	assert.Equal(t, NoItemFound, stored.Current().WebSearch)
}

type listener struct{ calls int }

func (l *listener) SessionChanged(*core.Session) { l.calls++ }

func TestExecute_NotifiesListener(t *testing.T) {
	l := &listener{}
	h := newHarness(model.NewScriptedStreamer(testutil.Completed("resp_1", "ok")), func(o *Options) { o.Listener = l })

	_, err := h.engine.Execute(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, 1, l.calls)
}

func TestExecute_RendersInstructions(t *testing.T) {
	cfg := DefaultConfig
	cfg.Instructions = "Today is {{.Date}}."
	h := newHarness(model.NewScriptedStreamer(testutil.Completed("resp_1", "ok")), func(o *Options) {
		o.Config = cfg
		o.Now = func() time.Time { return time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC) }
	})

	_, err := h.engine.Execute(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Today is 2025-03-04.", h.streamer.Requests()[0].Instructions)
}

// storeAPI serves only vector store calls; other methods panic via the nil
// embedded interface.
type storeAPI struct {
	resource.API
	existing map[string]bool
	created  int
	fail     error
}

func (a *storeAPI) GetVectorStore(_ context.Context, id string) (resource.VectorStore, error) {
	if a.fail != nil {
		return resource.VectorStore{}, a.fail
	}
	if !a.existing[id] {
		return resource.VectorStore{}, resource.ErrNotFound
	}
	return resource.VectorStore{ID: id}, nil
}

func (a *storeAPI) CreateVectorStore(_ context.Context, name string) (resource.VectorStore, error) {
	a.created++
	a.existing["vs-new"] = true
	return resource.VectorStore{ID: "vs-new", Name: name}, nil
}

func TestExecute_ReconcilesVectorStore(t *testing.T) {
	api := &storeAPI{existing: map[string]bool{}}
	cfg := DefaultConfig
	cfg.FileSearch.VectorStoreID = "vs-stale"
	h := newHarness(model.NewScriptedStreamer(testutil.Completed("resp_1", "ok")), func(o *Options) {
		o.Config = cfg
		o.Reconciler = resource.NewReconciler(api)
	})

	for i := 0; i < 2; i++ {
		_, err := h.engine.Execute(context.Background(), "hi")
		require.NoError(t, err)
	}

	assert.Equal(t, 1, api.created)
	assert.Equal(t, "vs-new", h.engine.VectorStoreID())
	for _, req := range h.streamer.Requests() {
		require.Len(t, req.Tools, 1)
		assert.Equal(t, []string{"vs-new"}, req.Tools[0].VectorStoreIDs)
	}
}

type debugRecorder struct {
	logging.NoOpLogger
	mu   sync.Mutex
	args [][]any
}

func (l *debugRecorder) Debug(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.args = append(l.args, append([]any{msg}, args...))
}

func TestExecute_TimesVectorStoreReconciliation(t *testing.T) {
	api := &storeAPI{existing: map[string]bool{"vs-1": true}}
	cfg := DefaultConfig
	cfg.FileSearch.VectorStoreID = "vs-1"
	logger := &debugRecorder{}
	h := newHarness(model.NewScriptedStreamer(testutil.Completed("resp_1", "ok")), func(o *Options) {
		o.Config = cfg
		o.Reconciler = resource.NewReconciler(api)
		o.Logger = logger
	})

	_, err := h.engine.Execute(context.Background(), "hi")
	require.NoError(t, err)

	logger.mu.Lock()
	defer logger.mu.Unlock()
	var timed bool
	for _, entry := range logger.args {
		for _, a := range entry {
			if a == "ensure vector store" {
				timed = true
			}
		}
	}
	assert.True(t, timed)
}

func TestExecute_ReconcileFailureSkipsFileSearch(t *testing.T) {
	api := &storeAPI{existing: map[string]bool{}, fail: errors.New("503")}
	reported := &core.Collector{}
	cfg := DefaultConfig
	cfg.FileSearch.VectorStoreID = "vs-1"
	h := newHarness(model.NewScriptedStreamer(testutil.Completed("resp_1", "ok")), func(o *Options) {
		o.Config = cfg
		o.Reconciler = resource.NewReconciler(api, func(ro *resource.Options) { ro.Reporter = reported })
	})

	_, err := h.engine.Execute(context.Background(), "hi")
	require.NoError(t, err)
	assert.Empty(t, h.streamer.Requests()[0].Tools)
	assert.Len(t, reported.Errors(), 1)
}

func TestSessionSwitchRejectedWhileTurnRuns(t *testing.T) {
	s := model.NewScriptedStreamer(testutil.Delta("a"), testutil.Completed("resp_1", "a"))
	h := newHarness(s)
	require.NoError(t, h.store.Save(core.NewSession("other")))

	var loadErr, newErr error
	s.BeforeEvent = func(i int) {
		if i == 1 {
			loadErr = h.engine.LoadSession("other")
			_, newErr = h.engine.NewSession()
		}
	}

	_, err := h.engine.Execute(context.Background(), "hi")
	require.NoError(t, err)
	assert.ErrorIs(t, loadErr, ErrTurnInFlight)
	assert.ErrorIs(t, newErr, ErrTurnInFlight)
	assert.Equal(t, "sess-1", h.engine.Session().ID)

	// The guard is released once the turn resolved.
	require.NoError(t, h.engine.LoadSession("other"))
	assert.Equal(t, "other", h.engine.Session().ID)
	_, err = h.engine.Execute(context.Background(), "again")
	require.NoError(t, err)
}

func TestLoadSession_ResumesChain(t *testing.T) {
	h := newHarness(model.NewScriptedStreamer(testutil.Completed("resp_9", "ok")))
	stored := testutil.NewSessionBuilder("old").Turn("earlier", "answer").Build()
	stored.Current().ResponseID = "resp_8"
	require.NoError(t, h.store.Save(stored))

	require.NoError(t, h.engine.LoadSession("old"))
	assert.Equal(t, "resp_8", h.engine.Tracker().Get())

	_, err := h.engine.Execute(context.Background(), "next")
	require.NoError(t, err)
	assert.Equal(t, "resp_8", h.streamer.Requests()[0].PreviousResponseID)
	assert.Equal(t, 2, h.engine.Session().Len())

	_, err = h.engine.NewSession()
	require.NoError(t, err)
	assert.Empty(t, h.engine.Tracker().Get())
}
