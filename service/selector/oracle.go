package selector

import (
	"context"

	"github.com/viant/runcell/model"
)

// RangeOracle supplies, for each query position, the chain of nested
// syntactic ranges enclosing it, ordered narrowest to widest. Implemented by
// the host's language-analysis service.
type RangeOracle interface {
	ResolveRanges(ctx context.Context, doc *model.Document, positions []model.Position) ([]model.Chain, error)
}

// SymbolOracle reports how many document symbols language analysis has
// produced for a document. A zero count means analysis has not warmed up
// yet and block selection must not be attempted.
type SymbolOracle interface {
	DocumentSymbols(ctx context.Context, doc *model.Document) (int, error)
}
