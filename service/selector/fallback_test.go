package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/runcell/model"
)

func TestIndentOracle_ResolveRanges(t *testing.T) {
	doc := model.NewDocument("t.py", "x = 1\ndef f():\n    a = 1\n\n    return a\ny = 2\n")
	oracle := IndentOracle{}

	chains, err := oracle.ResolveRanges(context.Background(), doc, []model.Position{
		{Line: 2, Column: 4},
		{Line: 0, Column: 0},
	})
	require.NoError(t, err)
	require.Len(t, chains, 2)

	// Indented line widens to the surrounding def block.
	require.Len(t, chains[0], 2)
	assert.Equal(t, 1, chains[0][1].Start.Line)
	assert.Equal(t, 4, chains[0][1].End.Line)

	// Top-level single statement stays a single-line chain.
	require.Len(t, chains[1], 1)
	assert.Equal(t, 0, chains[1][0].Start.Line)
	assert.Equal(t, 0, chains[1][0].End.Line)
}

func TestIndentOracle_WithResolve(t *testing.T) {
	doc := model.NewDocument("t.py", "def f():\n    a = 1\n    return a\n\nprint(f())\n")
	service := New(IndentOracle{})

	r, ok, err := service.Resolve(context.Background(), doc, model.NewCursor(1, 4))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, r.Start.Line)
	assert.Equal(t, 2, r.End.Line)
}
