package model

// Range is a contiguous span of source text - the unit of execution and of
// visual marking.
type Range struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// NewLineRange returns a range covering whole lines from start to end
// inclusive; the end column is left open (set by the caller or document).
func NewLineRange(startLine, endLine int) Range {
	return Range{
		Start: Position{Line: startLine},
		End:   Position{Line: endLine},
	}
}

// Empty reports whether the range covers no text.
func (r Range) Empty() bool {
	return r.Start == r.End || r.End.Before(r.Start)
}

// Contains reports whether p falls within the range (inclusive bounds).
func (r Range) Contains(p Position) bool {
	return !p.Before(r.Start) && !r.End.Before(p)
}

// SingleLine reports whether the range starts and ends on the same line.
func (r Range) SingleLine() bool {
	return r.Start.Line == r.End.Line
}

// Lines returns the number of lines the range touches.
func (r Range) Lines() int {
	return r.End.Line - r.Start.Line + 1
}

// Union returns a range spanning from the start of a to the end of b.
func Union(a, b Range) Range {
	return Range{Start: a.Start, End: b.End}
}

// Chain is an ordered sequence of nested syntactic ranges around a point,
// narrowest first, as supplied by the external language-analysis oracle.
type Chain []Range
