package session

import "time"

// PumpMode controls injection of the idle-time GUI event pump.
type PumpMode string

const (
	// PumpAuto enables pumping once a submitted source mentions a plotting
	// library.
	PumpAuto PumpMode = "auto"
	// PumpAlways enables pumping at session startup unconditionally.
	PumpAlways PumpMode = "always"
	// PumpNever disables pumping entirely.
	PumpNever PumpMode = "never"
)

// Option customises a session.
type Option func(s *Session)

// WithWorkingDir sets the subprocess working directory; empty means the host
// process working directory.
func WithWorkingDir(dir string) Option {
	return func(s *Session) { s.workDir = dir }
}

// WithPumpMode sets the GUI event pump mode.
func WithPumpMode(mode PumpMode) Option {
	return func(s *Session) {
		if mode != "" {
			s.pumpMode = mode
		}
	}
}

// WithOutput sets the sink receiving incidental output, stderr traffic and
// session diagnostics.
func WithOutput(sink func(text string)) Option {
	return func(s *Session) {
		if sink != nil {
			s.output = sink
		}
	}
}

// WithReadyTimeout overrides how long startup waits for the READY sentinel.
func WithReadyTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		if timeout > 0 {
			s.readyTimeout = timeout
		}
	}
}

// WithBootstrap replaces the embedded bootstrap program; used by tests and
// by hosts that need to extend the idle-work hook.
func WithBootstrap(source string) Option {
	return func(s *Session) {
		if source != "" {
			s.bootstrap = source
		}
	}
}
