// Package execution holds the unit-of-work types exchanged between the
// orchestrator, the interpreter session and the protocol codec.
package execution

import (
	"time"

	"github.com/viant/runcell/internal/clock"
	"github.com/viant/runcell/internal/idgen"
	"github.com/viant/runcell/model"
)

// RunState represents the current state of one run request.
type RunState string

const (
	StateIdle           RunState = "idle"
	StateSelecting      RunState = "selecting"
	StateDispatching    RunState = "dispatching"
	StateAwaitingResult RunState = "awaitingResult"
	StateSucceeded      RunState = "succeeded"
	StateFailed         RunState = "failed"
	StateRejected       RunState = "rejected"
)

// Terminal reports whether the state concludes a run.
func (s RunState) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateRejected:
		return true
	}
	return false
}

// Command is one source-text submission awaiting exactly one result. It is
// immutable once constructed and exists only for the duration of a single
// round trip to the interpreter.
type Command struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Filename string `json:"filename"`
	// Line is the 1-based starting line of the source within its file, used
	// by the interpreter so tracebacks report true locations.
	Line int `json:"line"`
	// Pump asks the interpreter to enable idle-time GUI event pumping for
	// the remainder of the session.
	Pump        bool      `json:"pump,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// NewCommand builds a command for the given source snippet.
func NewCommand(source, filename string, line int) *Command {
	return &Command{
		ID:          idgen.New(),
		Source:      source,
		Filename:    filename,
		Line:        line,
		SubmittedAt: clock.Now(),
	}
}

// EventKind discriminates decoded interpreter events.
type EventKind string

const (
	EventReady   EventKind = "ready"
	EventSuccess EventKind = "success"
	EventError   EventKind = "error"
)

// Event is the decoded outcome of a command, produced by the protocol codec
// and consumed exactly once by the orchestrator.
type Event struct {
	Kind   EventKind `json:"kind"`
	Output string    `json:"output,omitempty"`
	// TypeName carries the runtime type of an evaluated expression value;
	// empty for statement-mode execution or null results.
	TypeName string `json:"typeName,omitempty"`
}

// Outcome summarises one completed (or rejected) run request.
type Outcome struct {
	RunID string         `json:"runId"`
	State RunState       `json:"state"`
	Range model.Range    `json:"range"`
	Event *Event         `json:"event,omitempty"`
	// CursorLine is the line the cursor should move to after the run; it is
	// negative when the cursor must stay where it is.
	CursorLine int    `json:"cursorLine"`
	Reason     string `json:"reason,omitempty"`
}
