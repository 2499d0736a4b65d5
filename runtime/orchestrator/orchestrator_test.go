package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/runcell/model"
	"github.com/viant/runcell/model/execution"
	"github.com/viant/runcell/policy"
	"github.com/viant/runcell/progress"
	"github.com/viant/runcell/service/event"
	"github.com/viant/runcell/service/pyenv"
	"github.com/viant/runcell/service/selector"
	"github.com/viant/runcell/service/session"
	"github.com/viant/runcell/service/surface"
	"github.com/viant/runcell/service/transcript"
)

type fakeSession struct {
	mu          sync.Mutex
	interpreter string
	started     bool
	closed      bool
	startErr    error
	submitErr   error
	hold        bool
	pending     func(event *execution.Event)
	result      *execution.Event
	submitted   []*execution.Command
}

func (f *fakeSession) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

func (f *fakeSession) Interpreter() string { return f.interpreter }

func (f *fakeSession) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.mu.Lock()
	f.started = true
	f.mu.Unlock()
	return nil
}

func (f *fakeSession) Submit(cmd *execution.Command, callback func(event *execution.Event)) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hold && f.pending != nil {
		return session.ErrBusy
	}
	f.submitted = append(f.submitted, cmd)
	if f.hold {
		f.pending = callback
		return nil
	}
	result := f.result
	go callback(result)
	return nil
}

// release delivers the result of a held submission.
func (f *fakeSession) release(result *execution.Event) {
	f.mu.Lock()
	callback := f.pending
	f.pending = nil
	f.mu.Unlock()
	if callback != nil {
		callback(result)
	}
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

type symbolsFunc func(ctx context.Context, doc *model.Document) (int, error)

func (f symbolsFunc) DocumentSymbols(ctx context.Context, doc *model.Document) (int, error) {
	return f(ctx, doc)
}

type checkerFunc func(ctx context.Context, host *pyenv.Host, interpreter, source string) (bool, error)

func (f checkerFunc) CheckExpression(ctx context.Context, host *pyenv.Host, interpreter, source string) (bool, error) {
	return f(ctx, host, interpreter, source)
}

type oracleFunc func(ctx context.Context, doc *model.Document, positions []model.Position) ([]model.Chain, error)

func (f oracleFunc) ResolveRanges(ctx context.Context, doc *model.Document, positions []model.Position) ([]model.Chain, error) {
	return f(ctx, doc, positions)
}

func chainOracle(ranges ...model.Range) oracleFunc {
	return func(_ context.Context, _ *model.Document, positions []model.Position) ([]model.Chain, error) {
		var chains []model.Chain
		for _, at := range positions {
			var chain model.Chain
			for _, r := range ranges {
				if r.Contains(at) {
					chain = append(chain, r)
				}
			}
			chains = append(chains, chain)
		}
		return chains, nil
	}
}

func lineRange(startLine, endLine, endColumn int) model.Range {
	return model.Range{
		Start: model.Position{Line: startLine},
		End:   model.Position{Line: endLine, Column: endColumn},
	}
}

type fixture struct {
	doc      *model.Document
	service  *Service
	session  *fakeSession
	store    *surface.Store
	output   []string
	results  [][2]string
	notices  []string
	sessions int
	mu       sync.Mutex
}

func newFixture(t *testing.T, result *execution.Event, options ...Option) *fixture {
	t.Helper()
	f := &fixture{
		doc:     model.NewDocument("main.py", "x = 1\ny = 2\n"),
		session: &fakeSession{interpreter: "python3", result: result},
		store:   surface.NewStore(),
	}
	blockSelector := selector.New(chainOracle(lineRange(0, 0, 5), lineRange(1, 1, 5)))
	base := []Option{
		WithInterpreter("python3"),
		WithMarker(f.store),
		WithOutput(surface.OutputFunc(func(text string) {
			f.mu.Lock()
			f.output = append(f.output, text)
			f.mu.Unlock()
		})),
		WithResult(surface.ResultFunc(func(value, typeName string) {
			f.mu.Lock()
			f.results = append(f.results, [2]string{value, typeName})
			f.mu.Unlock()
		})),
		WithNotifier(surface.NotifyFunc(func(message string) {
			f.mu.Lock()
			f.notices = append(f.notices, message)
			f.mu.Unlock()
		})),
		WithTracker(progress.NewTracker(nil)),
	}
	f.service = New(blockSelector, func(interpreter string) Session {
		f.mu.Lock()
		f.sessions++
		f.mu.Unlock()
		f.session.interpreter = interpreter
		return f.session
	}, append(base, options...)...)
	return f
}

func TestRun_Success(t *testing.T) {
	f := newFixture(t, &execution.Event{Kind: execution.EventSuccess, Output: "hello\n"})
	outcome, err := f.service.Run(context.Background(), f.doc, model.NewCursor(0, 0))
	require.NoError(t, err)

	assert.EqualValues(t, execution.StateSucceeded, outcome.State)
	assert.Equal(t, 1, outcome.CursorLine)

	state, ok := f.store.State(outcome.Range)
	require.True(t, ok)
	assert.EqualValues(t, surface.StateSuccess, state)
	assert.Equal(t, []string{"hello\n"}, f.output)

	require.Len(t, f.session.submitted, 1)
	assert.Equal(t, "x = 1", f.session.submitted[0].Source)
	assert.Equal(t, 1, f.session.submitted[0].Line)
	assert.Equal(t, "main.py", f.session.submitted[0].Filename)
}

func TestRun_ErrorRestoresCursor(t *testing.T) {
	f := newFixture(t, &execution.Event{Kind: execution.EventError, Output: "Traceback ...\nZeroDivisionError\n"})
	outcome, err := f.service.Run(context.Background(), f.doc, model.NewCursor(0, 0))
	require.NoError(t, err)

	assert.EqualValues(t, execution.StateFailed, outcome.State)
	assert.Equal(t, -1, outcome.CursorLine)

	state, ok := f.store.State(outcome.Range)
	require.True(t, ok)
	assert.EqualValues(t, surface.StateError, state)
	require.Len(t, f.output, 1)
	assert.Contains(t, f.output[0], "ZeroDivisionError")
}

func TestRun_BusyRejected(t *testing.T) {
	f := newFixture(t, nil)
	f.session.submitErr = session.ErrBusy

	outcome, err := f.service.Run(context.Background(), f.doc, model.NewCursor(0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, execution.StateRejected, outcome.State)
	assert.Equal(t, 0, f.store.Len())
	assert.Empty(t, f.session.submitted)
}

func TestRun_BusyRejectionKeepsRunningState(t *testing.T) {
	tracker := progress.NewTracker(nil)
	f := newFixture(t, nil, WithTracker(tracker))
	f.session.hold = true

	done := make(chan *execution.Outcome, 1)
	go func() {
		outcome, _ := f.service.Run(context.Background(), f.doc, model.NewCursor(0, 0))
		done <- outcome
	}()
	require.Eventually(t, func() bool {
		return len(f.store.Ranges(surface.StateRunning)) == 1
	}, time.Second, 10*time.Millisecond)

	outcome, err := f.service.Run(context.Background(), f.doc, model.NewCursor(1, 0))
	require.NoError(t, err)
	assert.EqualValues(t, execution.StateRejected, outcome.State)

	// The in-flight run keeps its marker and busy state.
	assert.Len(t, f.store.Ranges(surface.StateRunning), 1)
	snapshot := tracker.Snapshot()
	assert.True(t, snapshot.Busy)
	assert.Equal(t, 1, snapshot.Rejected)

	f.session.release(&execution.Event{Kind: execution.EventSuccess})
	first := <-done
	assert.EqualValues(t, execution.StateSucceeded, first.State)
	assert.False(t, tracker.Snapshot().Busy)
}

func TestRun_AnalysisGate(t *testing.T) {
	f := newFixture(t, nil, WithSymbolOracle(symbolsFunc(func(context.Context, *model.Document) (int, error) {
		return 0, nil
	})))
	outcome, err := f.service.Run(context.Background(), f.doc, model.NewCursor(0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, execution.StateRejected, outcome.State)
	assert.Equal(t, "language analysis not ready", outcome.Reason)
	assert.Equal(t, 0, f.sessions)
}

func TestRun_PolicyDeny(t *testing.T) {
	f := newFixture(t, nil, WithPolicy(&policy.Policy{Mode: policy.ModeDeny}))
	outcome, err := f.service.Run(context.Background(), f.doc, model.NewCursor(0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, execution.StateRejected, outcome.State)
	assert.NotEmpty(t, f.notices)
	assert.Equal(t, 0, f.sessions)
}

func TestRun_AskReceivesResolvedSource(t *testing.T) {
	var asked []string
	pol := &policy.Policy{Mode: policy.ModeAsk, Ask: func(_ context.Context, _ string, source string, _ *policy.Policy) bool {
		asked = append(asked, source)
		return true
	}}
	f := newFixture(t, &execution.Event{Kind: execution.EventSuccess}, WithPolicy(pol))
	outcome, err := f.service.Run(context.Background(), f.doc, model.NewCursor(0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, execution.StateSucceeded, outcome.State)
	assert.Equal(t, []string{"x = 1"}, asked)
}

func TestRun_StartFailureNotifies(t *testing.T) {
	f := newFixture(t, nil)
	f.session.startErr = context.DeadlineExceeded

	outcome, err := f.service.Run(context.Background(), f.doc, model.NewCursor(0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, execution.StateRejected, outcome.State)
	require.Len(t, f.notices, 1)
	assert.Contains(t, f.notices[0], "failed to start interpreter")
}

func TestRun_InterpreterChangeRespawns(t *testing.T) {
	f := newFixture(t, &execution.Event{Kind: execution.EventSuccess})
	_, err := f.service.Run(context.Background(), f.doc, model.NewCursor(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, f.sessions)

	f.service.SetInterpreter("python3.12")
	_, err = f.service.Run(context.Background(), f.doc, model.NewCursor(1, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, f.sessions)
	assert.True(t, f.session.closed)
}

func TestEvaluate_DeliversResult(t *testing.T) {
	f := newFixture(t, &execution.Event{Kind: execution.EventSuccess, Output: "42\n", TypeName: "int"},
		WithExpressionChecker(checkerFunc(func(context.Context, *pyenv.Host, string, string) (bool, error) {
			return true, nil
		}), nil))

	outcome, err := f.service.Evaluate(context.Background(), f.doc, model.NewCursor(0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, execution.StateSucceeded, outcome.State)
	assert.Equal(t, -1, outcome.CursorLine)
	require.Len(t, f.results, 1)
	assert.Equal(t, "42", f.results[0][0])
	assert.Equal(t, "int", f.results[0][1])
}

func TestEvaluate_RejectsNonExpression(t *testing.T) {
	f := newFixture(t, nil,
		WithExpressionChecker(checkerFunc(func(context.Context, *pyenv.Host, string, string) (bool, error) {
			return false, nil
		}), nil))

	outcome, err := f.service.Evaluate(context.Background(), f.doc, model.NewCursor(0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, execution.StateRejected, outcome.State)
	require.Len(t, f.notices, 1)
	assert.Contains(t, f.notices[0], "not a valid expression")
	assert.Empty(t, f.session.submitted)
}

func TestRun_PublishesLifecycleEvents(t *testing.T) {
	bus := event.New()
	received := make(chan string, 4)
	err := event.SetListenerOf(bus, func(evt *event.Event[execution.Outcome]) {
		received <- evt.Context.EventType
	})
	require.NoError(t, err)

	f := newFixture(t, &execution.Event{Kind: execution.EventSuccess}, WithEvents(bus))
	_, err = f.service.Run(context.Background(), f.doc, model.NewCursor(0, 0))
	require.NoError(t, err)

	var kinds []string
	timeout := time.After(time.Second)
	for len(kinds) < 2 {
		select {
		case kind := <-received:
			kinds = append(kinds, kind)
		case <-timeout:
			t.Fatalf("expected 2 events, got %v", kinds)
		}
	}
	assert.Equal(t, []string{"started", "succeeded"}, kinds)
}

func TestRun_RecordsTranscript(t *testing.T) {
	buffer := transcript.NewBuffer(8)
	f := newFixture(t, &execution.Event{Kind: execution.EventSuccess, Output: "out\n"}, WithTranscript(buffer))
	_, err := f.service.Run(context.Background(), f.doc, model.NewCursor(0, 0))
	require.NoError(t, err)
	assert.Equal(t, "out\n", buffer.Text())
}
