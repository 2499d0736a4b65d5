package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/viant/runcell/internal/idgen"
	"github.com/viant/runcell/model"
	"github.com/viant/runcell/model/execution"
	"github.com/viant/runcell/policy"
	"github.com/viant/runcell/progress"
	"github.com/viant/runcell/protocol"
	"github.com/viant/runcell/service/event"
	"github.com/viant/runcell/service/pyenv"
	"github.com/viant/runcell/service/selector"
	"github.com/viant/runcell/service/session"
	"github.com/viant/runcell/service/surface"
	"github.com/viant/runcell/service/transcript"
	"github.com/viant/runcell/tracing"
)

// Session abstracts the interpreter subprocess so tests can substitute a
// fake. *session.Session satisfies it.
type Session interface {
	Ready() bool
	Interpreter() string
	Start(ctx context.Context) error
	Submit(cmd *execution.Command, callback func(event *execution.Event)) error
	Close() error
}

// SessionFactory builds a session for the supplied interpreter path.
type SessionFactory func(interpreter string) Session

// ExpressionChecker verifies that a snippet compiles in expression mode
// using a throwaway interpreter invocation. *pyenv.Service satisfies it.
type ExpressionChecker interface {
	CheckExpression(ctx context.Context, host *pyenv.Host, interpreter, source string) (bool, error)
}

// Service coordinates runs against a single interpreter session.
type Service struct {
	selector   *selector.Service
	symbols    selector.SymbolOracle
	newSession SessionFactory

	markers  surface.Marker
	output   surface.OutputSink
	results  surface.ResultSink
	notifier surface.Notifier

	checker ExpressionChecker
	host    *pyenv.Host

	events     *event.Service
	tracker    *progress.Tracker
	transcript *transcript.Buffer
	policy     *policy.Policy

	interpreter   string
	cursorAdvance bool
	pumpMode      session.PumpMode

	mu      sync.Mutex
	session Session
}

// New creates an orchestrator. The selector and session factory are
// mandatory; everything else is supplied via options and defaults to inert
// implementations.
func New(blockSelector *selector.Service, newSession SessionFactory, options ...Option) *Service {
	ret := &Service{
		selector:      blockSelector,
		newSession:    newSession,
		markers:       surface.NewStore(),
		output:        surface.OutputFunc(func(string) {}),
		results:       surface.ResultFunc(func(string, string) {}),
		notifier:      surface.NotifyFunc(func(string) {}),
		cursorAdvance: true,
		pumpMode:      session.PumpAuto,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Interpreter returns the configured interpreter path.
func (s *Service) Interpreter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interpreter
}

// SetInterpreter changes the interpreter path. The active session, if any,
// keeps running; the next run spawns a fresh session against the new path.
func (s *Service) SetInterpreter(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interpreter = path
}

// Run resolves the block indicated by sel within doc, executes it in the
// persistent session and distributes the outcome. Rejections are reported in
// the outcome, not as errors; the error return is reserved for context
// cancellation.
func (s *Service) Run(ctx context.Context, doc *model.Document, sel model.Selection) (outcome *execution.Outcome, err error) {
	ctx, span := tracing.StartSpan(ctx, "orchestrator.run", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	return s.execute(ctx, doc, sel, false)
}

// Evaluate resolves the block like Run, verifies it compiles in expression
// mode, and additionally delivers the flattened value and its type to the
// result surface.
func (s *Service) Evaluate(ctx context.Context, doc *model.Document, sel model.Selection) (outcome *execution.Outcome, err error) {
	ctx, span := tracing.StartSpan(ctx, "orchestrator.evaluate", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	return s.execute(ctx, doc, sel, true)
}

func (s *Service) execute(ctx context.Context, doc *model.Document, sel model.Selection, evaluate bool) (*execution.Outcome, error) {
	runID := idgen.New()

	if doc == nil {
		return s.reject(ctx, runID, model.Range{}, "no document", false), nil
	}

	if s.symbols != nil {
		count, err := s.symbols.DocumentSymbols(ctx, doc)
		if err != nil || count == 0 {
			// Analysis not warmed up yet; soft abort, never fatal.
			return s.reject(ctx, runID, model.Range{}, "language analysis not ready", false), nil
		}
	}

	blockRange, ok, err := s.selector.Resolve(ctx, doc, sel)
	if err != nil {
		log.Printf("block selection failed: %v", err)
		return s.reject(ctx, runID, model.Range{}, fmt.Sprintf("block selection failed: %v", err), false), nil
	}
	if !ok {
		outcome := s.reject(ctx, runID, model.Range{}, "nothing to execute", false)
		if s.cursorAdvance {
			if next, found := selector.NextExecutable(doc, sel.End.Line); found {
				outcome.CursorLine = next
			}
		}
		return outcome, nil
	}

	text := doc.Text(blockRange)
	if strings.TrimSpace(text) == "" {
		return s.reject(ctx, runID, blockRange, "nothing to execute", false), nil
	}

	// Policy is consulted with the resolved source so an ask-mode callback
	// can show the user exactly what would execute.
	if reason, ok := s.checkPolicy(ctx, doc.Filename, text); !ok {
		return s.reject(ctx, runID, blockRange, reason, true), nil
	}

	if evaluate && s.checker != nil {
		valid, err := s.checker.CheckExpression(ctx, s.host, s.Interpreter(), text)
		if err != nil {
			log.Printf("expression check failed: %v", err)
		} else if !valid {
			s.notifier.Notify("selection is not a valid expression")
			return s.reject(ctx, runID, blockRange, "not a valid expression", false), nil
		}
	}

	active, err := s.ensureSession(ctx)
	if err != nil {
		s.notifier.Notify(fmt.Sprintf("failed to start interpreter: %v (see output for details)", err))
		return s.reject(ctx, runID, blockRange, err.Error(), false), nil
	}

	cmd := execution.NewCommand(text, doc.Filename, blockRange.Start.Line+1)
	if s.pumpMode == session.PumpAuto {
		cmd.Pump = session.NeedsEventPump(text)
	}

	// Markers are untouched until the session accepts the command so that a
	// busy rejection leaves the in-flight run's visual state intact.
	results := make(chan *execution.Event, 1)
	if err := active.Submit(cmd, func(result *execution.Event) { results <- result }); err != nil {
		return s.reject(ctx, runID, blockRange, err.Error(), false), nil
	}
	s.markers.Clear()
	s.markers.Apply(blockRange, surface.StateRunning)
	s.tracker.Begin(runID, blockRange)
	s.publish(ctx, runID, doc.Filename, &execution.Outcome{RunID: runID, State: execution.StateAwaitingResult, Range: blockRange, CursorLine: -1}, "started")

	select {
	case <-ctx.Done():
		s.markers.Clear(surface.StateRunning)
		s.tracker.End(runID, progress.Delta{Failed: 1})
		return nil, ctx.Err()
	case result := <-results:
		return s.complete(ctx, runID, doc, blockRange, result, evaluate), nil
	}
}

func (s *Service) complete(ctx context.Context, runID string, doc *model.Document, blockRange model.Range, result *execution.Event, evaluate bool) *execution.Outcome {
	outcome := &execution.Outcome{
		RunID:      runID,
		Range:      blockRange,
		Event:      result,
		CursorLine: -1,
	}
	s.markers.Clear(surface.StateRunning)

	if result.Kind == execution.EventError {
		outcome.State = execution.StateFailed
		s.markers.Apply(blockRange, surface.StateError)
		s.forward(runID, result.Output)
		s.tracker.End(runID, progress.Delta{Failed: 1})
		s.publish(ctx, runID, doc.Filename, outcome, "failed")
		return outcome
	}

	outcome.State = execution.StateSucceeded
	s.markers.Apply(blockRange, surface.StateSuccess)
	s.forward(runID, result.Output)
	if evaluate {
		s.results.Show(protocol.Flatten(result.Output), result.TypeName)
	}
	if s.cursorAdvance && !evaluate {
		if next, found := selector.NextExecutable(doc, blockRange.End.Line); found {
			outcome.CursorLine = next
		}
	}
	s.tracker.End(runID, progress.Delta{Succeeded: 1})
	s.publish(ctx, runID, doc.Filename, outcome, "succeeded")
	return outcome
}

// Restart tears down the active session; the next run spawns a fresh one.
func (s *Service) Restart() error {
	s.mu.Lock()
	active := s.session
	s.session = nil
	s.mu.Unlock()
	if active == nil {
		return nil
	}
	return active.Close()
}

// Shutdown closes the active session.
func (s *Service) Shutdown() error {
	return s.Restart()
}

// Busy reports whether a run is currently in flight.
func (s *Service) Busy() bool {
	return s.tracker.Snapshot().Busy
}

func (s *Service) ensureSession(ctx context.Context) (Session, error) {
	s.mu.Lock()
	interpreter := s.interpreter
	active := s.session
	s.mu.Unlock()

	if interpreter == "" {
		return nil, fmt.Errorf("no interpreter configured")
	}
	if active != nil && active.Interpreter() == interpreter {
		return active, nil
	}
	if active != nil {
		_ = active.Close()
	}
	replacement := s.newSession(interpreter)
	if err := replacement.Start(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.session = replacement
	s.mu.Unlock()
	return replacement, nil
}

func (s *Service) checkPolicy(ctx context.Context, filename, source string) (string, bool) {
	pol := policy.FromContext(ctx)
	if pol == nil {
		pol = s.policy
	}
	if pol == nil {
		return "", true
	}
	if pol.Mode == policy.ModeDeny {
		return "execution blocked by policy", false
	}
	if !pol.IsAllowed(filename) {
		return fmt.Sprintf("execution of %v blocked by policy", filename), false
	}
	if pol.Mode == policy.ModeAsk && pol.Ask != nil && !pol.Ask(ctx, filename, source, pol) {
		return "execution declined", false
	}
	return "", true
}

// reject builds a rejected outcome, optionally surfacing the reason to the
// user, and records it with the tracker and event bus.
func (s *Service) reject(ctx context.Context, runID string, blockRange model.Range, reason string, notify bool) *execution.Outcome {
	if notify {
		s.notifier.Notify(reason)
	}
	s.tracker.End(runID, progress.Delta{Rejected: 1})
	return s.rejected(ctx, runID, blockRange, reason)
}

func (s *Service) rejected(ctx context.Context, runID string, blockRange model.Range, reason string) *execution.Outcome {
	outcome := &execution.Outcome{
		RunID:      runID,
		State:      execution.StateRejected,
		Range:      blockRange,
		CursorLine: -1,
		Reason:     reason,
	}
	s.publish(ctx, runID, "", outcome, "rejected")
	return outcome
}

func (s *Service) forward(runID, output string) {
	if output == "" {
		return
	}
	text := protocol.Verbatim(output)
	s.output.Append(text)
	if s.transcript != nil {
		s.transcript.Append(runID, text)
	}
}

func (s *Service) publish(ctx context.Context, runID, filename string, outcome *execution.Outcome, eventType string) {
	if s.events == nil {
		return
	}
	publisher, err := event.PublisherOf[execution.Outcome](s.events)
	if err != nil {
		log.Printf("failed to acquire outcome publisher: %v", err)
		return
	}
	if err := publisher.Publish(ctx, event.NewEvent(&event.Context{RunID: runID, Filename: filename, EventType: eventType}, *outcome)); err != nil {
		log.Printf("failed to publish run event: %v", err)
	}
}
