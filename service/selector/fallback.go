package selector

import (
	"context"

	"github.com/viant/runcell/model"
)

// IndentOracle is a fallback RangeOracle used when no language-analysis
// service is wired. It approximates top-level blocks from indentation: a
// block starts at a column-zero code line and extends over its indented
// continuation lines. The resulting chain holds the enclosing block and the
// line itself.
type IndentOracle struct{}

func (IndentOracle) ResolveRanges(_ context.Context, doc *model.Document, positions []model.Position) ([]model.Chain, error) {
	chains := make([]model.Chain, 0, len(positions))
	for _, at := range positions {
		chains = append(chains, indentChain(doc, at))
	}
	return chains, nil
}

func indentChain(doc *model.Document, at model.Position) model.Chain {
	line := at.Line
	if line < 0 || line >= doc.LineCount() {
		return nil
	}
	var chain model.Chain
	if Executable(doc.Line(line)) {
		chain = append(chain, model.Range{
			Start: model.Position{Line: line},
			End:   model.Position{Line: line, Column: doc.LastColumn(line)},
		})
	}
	start, end, ok := indentBlock(doc, line)
	if ok && (start != line || end != line) {
		chain = append(chain, model.Range{
			Start: model.Position{Line: start},
			End:   model.Position{Line: end, Column: doc.LastColumn(end)},
		})
	}
	return chain
}

// indentBlock widens line to the surrounding top-level statement: back to
// the nearest column-zero code line, forward over indented or blank
// continuation lines up to the last code line of the block.
func indentBlock(doc *model.Document, line int) (int, int, bool) {
	start := line
	for start > 0 {
		text := doc.Line(start)
		if Executable(text) && doc.FirstNonWhitespace(start) == 0 {
			break
		}
		start--
	}
	if !Executable(doc.Line(start)) {
		return 0, 0, false
	}
	end := start
	for next := start + 1; next < doc.LineCount(); next++ {
		text := doc.Line(next)
		if !Executable(text) {
			continue
		}
		if doc.FirstNonWhitespace(next) == 0 {
			break
		}
		end = next
	}
	if line > end {
		// The query point sits past the block's last code line.
		return 0, 0, false
	}
	return start, end, true
}
