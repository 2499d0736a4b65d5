// Package surface defines the presentation contract the engine exposes:
// visual markers over line ranges, appended output text, modal results and
// user notifications. Hosts implement these interfaces; the engine never
// renders anything itself.
package surface

import "github.com/viant/runcell/model"

// State is a visual marker state applied to a line range. States are
// mutually exclusive per range.
type State string

const (
	StateRunning State = "running"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Marker paints and clears visual states over code ranges.
type Marker interface {
	Apply(r model.Range, state State)
	Clear(states ...State)
}

// OutputSink receives appended output text, rendered verbatim.
type OutputSink interface {
	Append(text string)
}

// ResultSink displays a modal result with its value and runtime type.
type ResultSink interface {
	Show(value, typeName string)
}

// Notifier surfaces blocking user messages (configuration and startup
// failures).
type Notifier interface {
	Notify(message string)
}

// OutputFunc adapts a function to OutputSink.
type OutputFunc func(text string)

func (f OutputFunc) Append(text string) { f(text) }

// ResultFunc adapts a function to ResultSink.
type ResultFunc func(value, typeName string)

func (f ResultFunc) Show(value, typeName string) { f(value, typeName) }

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(message string)

func (f NotifyFunc) Notify(message string) { f(message) }
