package model

import (
	"strings"
	"unicode"
)

// Document is an immutable snapshot of a source buffer.
type Document struct {
	Filename string
	lines    []string
}

// NewDocument splits text into lines; carriage returns are dropped so the
// document is normalised regardless of the host platform.
func NewDocument(filename, text string) *Document {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	return &Document{Filename: filename, lines: lines}
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// Line returns the text of the given line, or an empty string when the index
// is out of bounds.
func (d *Document) Line(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// LastColumn returns the column just past the final character of a line.
func (d *Document) LastColumn(i int) int {
	return len(d.Line(i))
}

// FirstNonWhitespace returns the column of the first non-whitespace rune on
// a line; for blank lines it returns 0.
func (d *Document) FirstNonWhitespace(i int) int {
	line := d.Line(i)
	for col, r := range line {
		if !unicode.IsSpace(r) {
			return col
		}
	}
	return 0
}

// Blank reports whether a line contains only whitespace.
func (d *Document) Blank(i int) bool {
	return strings.TrimSpace(d.Line(i)) == ""
}

// Bounds returns the first and last lines containing non-blank text. When
// the document holds no text at all ok is false. Files commonly carry
// leading or trailing blank padding, so callers must not assume line 0 or
// the last raw line as natural boundaries.
func (d *Document) Bounds() (first, last int, ok bool) {
	first, last = -1, -1
	for i := range d.lines {
		if d.Blank(i) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	return first, last, first >= 0
}

// Text returns the raw text between the range's start and end positions.
func (d *Document) Text(r Range) string {
	if r.Empty() && r.Start.Line == r.End.Line {
		return ""
	}
	start, end := r.Start, r.End
	if end.Before(start) {
		start, end = end, start
	}
	if start.Line == end.Line {
		return slice(d.Line(start.Line), start.Column, end.Column)
	}
	var b strings.Builder
	b.WriteString(slice(d.Line(start.Line), start.Column, len(d.Line(start.Line))))
	for i := start.Line + 1; i < end.Line; i++ {
		b.WriteByte('\n')
		b.WriteString(d.Line(i))
	}
	b.WriteByte('\n')
	b.WriteString(slice(d.Line(end.Line), 0, end.Column))
	return b.String()
}

// LineRange expands a range to full line coverage: column 0 of the first
// line through the last column of the final line.
func (d *Document) LineRange(r Range) Range {
	return Range{
		Start: Position{Line: r.Start.Line},
		End:   Position{Line: r.End.Line, Column: d.LastColumn(r.End.Line)},
	}
}

func slice(line string, from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(line) {
		to = len(line)
	}
	if from >= to {
		return ""
	}
	return line[from:to]
}
