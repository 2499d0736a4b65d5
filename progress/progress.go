package progress

import (
	"sync"
	"time"

	"github.com/viant/runcell/internal/clock"
	"github.com/viant/runcell/model"
)

// Delta represents an incremental counter change emitted by the
// orchestrator.  The fields are signed and therefore can be either positive
// (increment) or negative (decrement).
type Delta struct {
	Started   int
	Succeeded int
	Failed    int
	Rejected  int
}

// Tracker keeps aggregated run counters and the in-flight run, if any.  It
// is safe for concurrent use.
type Tracker struct {
	StartedAt time.Time

	Started   int
	Succeeded int
	Failed    int
	Rejected  int

	// Busy run, valid only while busy is true.
	busy       bool
	busyRunID  string
	busyRange  model.Range
	busySince  time.Time

	mu       sync.Mutex
	onChange func(Snapshot)
}

// Snapshot is a read-only copy of the tracker state.
type Snapshot struct {
	StartedAt time.Time
	Started   int
	Succeeded int
	Failed    int
	Rejected  int
	Busy      bool
	RunID     string
	Range     model.Range
	Elapsed   time.Duration
}

// NewTracker returns a tracker with an optional onChange callback, invoked
// with a snapshot after every state change, outside the critical section so
// the callback can perform slow operations without blocking the engine.
func NewTracker(onChange func(Snapshot)) *Tracker {
	return &Tracker{StartedAt: clock.Now(), onChange: onChange}
}

// Begin marks a run as in flight.
func (t *Tracker) Begin(runID string, r model.Range) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.Started++
	t.busy = true
	t.busyRunID = runID
	t.busyRange = r
	t.busySince = clock.Now()
	snapshot := t.snapshot()
	cb := t.onChange
	t.mu.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

// End applies the supplied delta and, when runID matches the in-flight run,
// clears the busy state. A rejected run that never began therefore bumps its
// counter without disturbing the run that is still executing.
func (t *Tracker) End(runID string, d Delta) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.Started += d.Started
	t.Succeeded += d.Succeeded
	t.Failed += d.Failed
	t.Rejected += d.Rejected
	if t.busy && t.busyRunID == runID {
		t.busy = false
		t.busyRunID = ""
		t.busyRange = model.Range{}
	}
	snapshot := t.snapshot()
	cb := t.onChange
	t.mu.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (t *Tracker) Snapshot() Snapshot {
	if t == nil {
		return Snapshot{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

func (t *Tracker) snapshot() Snapshot {
	s := Snapshot{
		StartedAt: t.StartedAt,
		Started:   t.Started,
		Succeeded: t.Succeeded,
		Failed:    t.Failed,
		Rejected:  t.Rejected,
		Busy:      t.busy,
		RunID:     t.busyRunID,
		Range:     t.busyRange,
	}
	if t.busy {
		s.Elapsed = clock.Now().Sub(t.busySince)
	}
	return s
}

// OnChange registers a callback that is invoked after every state change.
// Passing nil disables the callback.  Only one callback can be active;
// subsequent calls overwrite the previous value.
func (t *Tracker) OnChange(cb func(Snapshot)) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.onChange = cb
	t.mu.Unlock()
}
