package runcell

import (
	"context"

	"github.com/viant/runcell/model"
	"github.com/viant/runcell/model/execution"
	"github.com/viant/runcell/progress"
	"github.com/viant/runcell/runtime/orchestrator"
	"github.com/viant/runcell/service/event"
	"github.com/viant/runcell/service/stream"
	"github.com/viant/runcell/service/transcript"
	"github.com/viant/runcell/service/watcher"
)

// Runtime exposes the execution entry points of a configured engine.
type Runtime struct {
	orchestrator *orchestrator.Service
	tracker      *progress.Tracker
	transcript   *transcript.Buffer
	events       *event.Service
	stream       *stream.Server
	watcher      *watcher.Watcher
}

// Run executes the block indicated by sel within doc in the persistent
// session.
func (r *Runtime) Run(ctx context.Context, doc *model.Document, sel model.Selection) (*execution.Outcome, error) {
	return r.orchestrator.Run(ctx, doc, sel)
}

// Evaluate executes the selection in expression mode and surfaces its value.
func (r *Runtime) Evaluate(ctx context.Context, doc *model.Document, sel model.Selection) (*execution.Outcome, error) {
	return r.orchestrator.Evaluate(ctx, doc, sel)
}

// Restart tears down the interpreter session; the next run spawns a fresh
// one with an empty namespace.
func (r *Runtime) Restart() error {
	return r.orchestrator.Restart()
}

// Shutdown closes the interpreter session.
func (r *Runtime) Shutdown() error {
	return r.orchestrator.Shutdown()
}

// Busy reports whether a run is in flight.
func (r *Runtime) Busy() bool {
	return r.orchestrator.Busy()
}

// SetInterpreter changes the interpreter path; the next run respawns.
func (r *Runtime) SetInterpreter(path string) {
	r.orchestrator.SetInterpreter(path)
}

// Progress returns a snapshot of run counters and the busy state.
func (r *Runtime) Progress() progress.Snapshot {
	return r.tracker.Snapshot()
}

// Transcript returns the retained output buffer.
func (r *Runtime) Transcript() *transcript.Buffer {
	return r.transcript
}

// Events returns the run-event bus for host subscriptions.
func (r *Runtime) Events() *event.Service {
	return r.events
}

// Stream returns the attached stream server, if any.
func (r *Runtime) Stream() *stream.Server {
	return r.stream
}
