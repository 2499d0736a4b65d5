package runcell

import (
	"fmt"

	"github.com/viant/runcell/policy"
	"github.com/viant/runcell/service/pyenv"
	"github.com/viant/runcell/service/session"
)

// Config is a serialisable representation of the engine configuration. It
// can be populated from JSON or YAML (for example through the settings
// document loaded by service/meta). The zero-value is useful; all fields
// inherit their package defaults.
type Config struct {
	// Interpreter is the Python interpreter path; empty means discover via
	// service/pyenv.
	Interpreter string `json:"interpreter" yaml:"interpreter"`

	// WorkingDir is the subprocess working directory; empty means the host
	// process working directory.
	WorkingDir string `json:"workingDir" yaml:"workingDir"`

	// GUIEventPump selects the idle-time GUI pump mode: auto, always or
	// never.
	GUIEventPump string `json:"guiEventPump" yaml:"guiEventPump"`

	// CursorAdvance moves the cursor to the next executable line after a
	// successful run.
	CursorAdvance *bool `json:"cursorAdvance" yaml:"cursorAdvance"`

	// ReadyTimeoutMs bounds interpreter startup.
	ReadyTimeoutMs int `json:"readyTimeoutMs" yaml:"readyTimeoutMs"`

	// TranscriptSize is the number of output records retained in memory.
	TranscriptSize int `json:"transcriptSize" yaml:"transcriptSize"`

	// Host identifies where interpreter discovery probes run; nil means
	// the local host.
	Host *pyenv.Host `json:"host,omitempty" yaml:"host,omitempty"`

	// Policy holds the declarative execution policy.
	Policy *policy.Config `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// DefaultConfig returns a Config populated with package defaults. Callers
// may modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	advance := true
	return &Config{
		GUIEventPump:   string(session.PumpAuto),
		CursorAdvance:  &advance,
		ReadyTimeoutMs: 5000,
		TranscriptSize: 512,
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch session.PumpMode(c.GUIEventPump) {
	case "", session.PumpAuto, session.PumpAlways, session.PumpNever:
	default:
		return fmt.Errorf("guiEventPump must be auto, always or never, got %q", c.GUIEventPump)
	}
	if c.ReadyTimeoutMs < 0 {
		return fmt.Errorf("readyTimeoutMs must be >= 0")
	}
	if c.TranscriptSize < 0 {
		return fmt.Errorf("transcriptSize must be >= 0")
	}
	return nil
}

// cursorAdvance resolves the tri-state flag with its default.
func (c *Config) cursorAdvance() bool {
	if c == nil || c.CursorAdvance == nil {
		return true
	}
	return *c.CursorAdvance
}
