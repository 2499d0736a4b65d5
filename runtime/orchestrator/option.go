package orchestrator

import (
	"github.com/viant/runcell/policy"
	"github.com/viant/runcell/progress"
	"github.com/viant/runcell/service/event"
	"github.com/viant/runcell/service/pyenv"
	"github.com/viant/runcell/service/selector"
	"github.com/viant/runcell/service/session"
	"github.com/viant/runcell/service/surface"
	"github.com/viant/runcell/service/transcript"
)

// Option customises the orchestrator.
type Option func(s *Service)

// WithInterpreter sets the interpreter path used to spawn sessions.
func WithInterpreter(path string) Option {
	return func(s *Service) { s.interpreter = path }
}

// WithSymbolOracle installs the readiness gate; nil disables the gate.
func WithSymbolOracle(oracle selector.SymbolOracle) Option {
	return func(s *Service) { s.symbols = oracle }
}

// WithMarker replaces the default in-memory marker store.
func WithMarker(marker surface.Marker) Option {
	return func(s *Service) {
		if marker != nil {
			s.markers = marker
		}
	}
}

// WithOutput sets the sink receiving verbatim run output.
func WithOutput(sink surface.OutputSink) Option {
	return func(s *Service) {
		if sink != nil {
			s.output = sink
		}
	}
}

// WithResult sets the surface receiving evaluate-mode values.
func WithResult(sink surface.ResultSink) Option {
	return func(s *Service) {
		if sink != nil {
			s.results = sink
		}
	}
}

// WithNotifier sets the surface receiving blocking user messages.
func WithNotifier(notifier surface.Notifier) Option {
	return func(s *Service) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithExpressionChecker installs the evaluate-mode compile probe together
// with the host it should probe against; nil host means local.
func WithExpressionChecker(checker ExpressionChecker, host *pyenv.Host) Option {
	return func(s *Service) {
		s.checker = checker
		s.host = host
	}
}

// WithEvents installs the run-event bus.
func WithEvents(events *event.Service) Option {
	return func(s *Service) { s.events = events }
}

// WithTracker installs the progress tracker.
func WithTracker(tracker *progress.Tracker) Option {
	return func(s *Service) { s.tracker = tracker }
}

// WithTranscript installs the output retention buffer.
func WithTranscript(buffer *transcript.Buffer) Option {
	return func(s *Service) { s.transcript = buffer }
}

// WithPolicy installs the execution policy applied when the context carries
// none.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithCursorAdvance toggles post-run cursor movement.
func WithCursorAdvance(enabled bool) Option {
	return func(s *Service) { s.cursorAdvance = enabled }
}

// WithPumpMode sets the GUI event pump mode used for new sessions and for
// the per-command pump flag in auto mode.
func WithPumpMode(mode session.PumpMode) Option {
	return func(s *Service) {
		if mode != "" {
			s.pumpMode = mode
		}
	}
}
