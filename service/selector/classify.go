package selector

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"

	"github.com/viant/runcell/model"
)

// Token codes
const (
	whitespaceCode = iota
	commentCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	commentToken    = parsly.NewToken(commentCode, "Comment", matcher.NewByte('#'))
)

// LineKind classifies a single source line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineCode
)

// Classify tokenizes one line: leading whitespace, then either end of input
// (blank), a comment marker, or code.
func Classify(line string) LineKind {
	cursor := parsly.NewCursor("", []byte(line), 0)
	cursor.MatchOne(whitespaceToken)
	if cursor.Pos >= cursor.InputSize {
		return LineBlank
	}
	if matched := cursor.MatchOne(commentToken); matched.Code == commentCode {
		return LineComment
	}
	return LineCode
}

// Executable reports whether a line holds executable text, i.e. it is
// neither blank nor comment-only.
func Executable(line string) bool {
	return Classify(line) == LineCode
}

// NextExecutable returns the first executable line strictly after the given
// one, or false when none exists before end of file.
func NextExecutable(doc *model.Document, after int) (int, bool) {
	for i := after + 1; i < doc.LineCount(); i++ {
		if Executable(doc.Line(i)) {
			return i, true
		}
	}
	return 0, false
}
