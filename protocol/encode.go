package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/viant/runcell/model/execution"
)

// request is the single-line record the interpreter reads per command. The
// source text is nested-encoded: the field holds a JSON string literal of
// the raw source so embedded newlines and quotes survive the line framing
// verbatim (the bootstrap decodes it with a second json.loads).
type request struct {
	Source   string `json:"source"`
	Filename string `json:"filename"`
	Line     int    `json:"line"`
	Pump     bool   `json:"pump,omitempty"`
}

// Encode serialises a command into one newline-terminated request line.
func Encode(cmd *execution.Command) ([]byte, error) {
	if cmd == nil {
		return nil, fmt.Errorf("command was nil")
	}
	nested, err := json.Marshal(cmd.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to encode source: %w", err)
	}
	line := cmd.Line
	if line < 1 {
		line = 1
	}
	data, err := json.Marshal(&request{
		Source:   string(nested),
		Filename: cmd.Filename,
		Line:     line,
		Pump:     cmd.Pump,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode command %v: %w", cmd.ID, err)
	}
	return append(data, '\n'), nil
}
