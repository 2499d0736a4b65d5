package selector

import (
	"context"
	"fmt"

	"github.com/viant/runcell/model"
)

// Service resolves run requests to executable code ranges.
type Service struct {
	oracle RangeOracle
}

// New creates a selector backed by the supplied range oracle.
func New(oracle RangeOracle) *Service {
	return &Service{oracle: oracle}
}

// Resolve computes the code range to execute for the given selection. The
// second result is false when nothing is executable; err is only returned
// for oracle failures, which callers treat as "analysis not ready".
func (s *Service) Resolve(ctx context.Context, doc *model.Document, sel model.Selection) (model.Range, bool, error) {
	if doc == nil || doc.LineCount() == 0 {
		return model.Range{}, false, nil
	}
	norm := Normalize(doc, sel)
	start, end, ok := Trim(doc, norm.Start.Line, norm.End.Line)
	if !ok {
		if sel.Empty() {
			return s.enclosingBlock(ctx, doc, sel.Start)
		}
		return model.Range{}, false, nil
	}

	points := []model.Position{
		{Line: start, Column: doc.FirstNonWhitespace(start)},
		{Line: end, Column: doc.FirstNonWhitespace(end)},
	}
	chains, err := s.oracle.ResolveRanges(ctx, doc, points)
	if err != nil {
		return model.Range{}, false, err
	}
	if len(chains) < 2 {
		return model.Range{}, false, fmt.Errorf("range oracle returned %v chains, expected 2", len(chains))
	}

	first, ok1 := topLevelBlock(doc, chains[0])
	second, ok2 := topLevelBlock(doc, chains[1])
	if !ok1 {
		first = doc.LineRange(model.NewLineRange(start, start))
	}
	if !ok2 {
		second = doc.LineRange(model.NewLineRange(end, end))
	}
	result := model.Union(first, second)
	if result.Empty() {
		return model.Range{}, false, nil
	}
	return result, true, nil
}

// Normalize drops the trailing line of a line-wise selection whose end sits
// at column 0 strictly below the start line.
func Normalize(doc *model.Document, sel model.Selection) model.Selection {
	if sel.Empty() {
		return sel
	}
	if sel.End.Column == 0 && sel.End.Line > sel.Start.Line {
		line := sel.End.Line - 1
		sel.End = model.Position{Line: line, Column: doc.LastColumn(line)}
	}
	return sel
}

// Trim narrows [startLine, endLine] by removing leading and trailing blank
// or comment-only lines. ok is false when no executable line remains.
// Trimming an already trimmed span returns it unchanged.
func Trim(doc *model.Document, startLine, endLine int) (int, int, bool) {
	if endLine >= doc.LineCount() {
		endLine = doc.LineCount() - 1
	}
	if startLine < 0 {
		startLine = 0
	}
	for startLine <= endLine && !Executable(doc.Line(startLine)) {
		startLine++
	}
	for endLine >= startLine && !Executable(doc.Line(endLine)) {
		endLine--
	}
	if startLine > endLine {
		return 0, 0, false
	}
	return startLine, endLine, true
}

// enclosingBlock handles a bare cursor resting on a non-executable line: the
// widest enclosing syntactic range short of the whole document is used when
// it spans multiple lines and sits inside the document's non-blank bounds.
func (s *Service) enclosingBlock(ctx context.Context, doc *model.Document, at model.Position) (model.Range, bool, error) {
	chains, err := s.oracle.ResolveRanges(ctx, doc, []model.Position{at})
	if err != nil {
		return model.Range{}, false, err
	}
	if len(chains) == 0 {
		return model.Range{}, false, nil
	}
	block, found := topLevelBlock(doc, chains[0])
	if !found || block.SingleLine() {
		return model.Range{}, false, nil
	}
	first, last, ok := doc.Bounds()
	if !ok || block.Start.Line < first || block.End.Line > last {
		return model.Range{}, false, nil
	}
	return block, true, nil
}

// topLevelBlock walks a chain outward and returns the last range before the
// parent would cover the document's entire non-blank extent - the smallest
// top-level block containing the query point.
func topLevelBlock(doc *model.Document, chain model.Chain) (model.Range, bool) {
	var out model.Range
	found := false
	for _, candidate := range chain {
		if WholeDocument(doc, candidate) {
			break
		}
		out = candidate
		found = true
	}
	return out, found
}

// WholeDocument reports whether a range covers the document's entire
// non-blank extent. The computed non-blank bounds are used rather than the
// literal first/last lines so files with blank padding behave the same as
// files without.
func WholeDocument(doc *model.Document, r model.Range) bool {
	first, last, ok := doc.Bounds()
	if !ok {
		return true
	}
	return r.Start.Line <= first && r.End.Line >= last
}
