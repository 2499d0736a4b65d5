package model

// Position identifies a character location within a document.
type Position struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Before reports whether p precedes o in document order.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// After reports whether p follows o in document order.
func (p Position) After(o Position) bool {
	return o.Before(p)
}

// Selection is a user selection; when Start equals End it degenerates to a
// bare cursor position.
type Selection struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// Empty reports whether the selection is a bare cursor.
func (s Selection) Empty() bool {
	return s.Start == s.End
}

// NewCursor returns a selection collapsed onto a single position.
func NewCursor(line, column int) Selection {
	p := Position{Line: line, Column: column}
	return Selection{Start: p, End: p}
}
