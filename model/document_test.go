package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_Bounds(t *testing.T) {
	testCases := []struct {
		name      string
		text      string
		expectOK  bool
		wantFirst int
		wantLast  int
	}{
		{name: "no padding", text: "a = 1\nb = 2", expectOK: true, wantFirst: 0, wantLast: 1},
		{name: "leading and trailing blanks", text: "\n\nx = 1\n\n \n", expectOK: true, wantFirst: 2, wantLast: 2},
		{name: "all blank", text: "\n \n\t\n", expectOK: false},
		{name: "empty", text: "", expectOK: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := NewDocument("test.py", tc.text)
			first, last, ok := doc.Bounds()
			assert.Equal(t, tc.expectOK, ok)
			if !tc.expectOK {
				return
			}
			assert.Equal(t, tc.wantFirst, first)
			assert.Equal(t, tc.wantLast, last)
		})
	}
}

func TestDocument_Text(t *testing.T) {
	doc := NewDocument("test.py", "def f():\n    return 1\n\nf()")
	testCases := []struct {
		name   string
		aRange Range
		expect string
	}{
		{
			name:   "multi line",
			aRange: Range{Start: Position{Line: 0}, End: Position{Line: 1, Column: 12}},
			expect: "def f():\n    return 1",
		},
		{
			name:   "single line slice",
			aRange: Range{Start: Position{Line: 3}, End: Position{Line: 3, Column: 3}},
			expect: "f()",
		},
		{
			name:   "empty",
			aRange: Range{Start: Position{Line: 1, Column: 2}, End: Position{Line: 1, Column: 2}},
			expect: "",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, doc.Text(tc.aRange))
		})
	}
}

func TestDocument_FirstNonWhitespace(t *testing.T) {
	doc := NewDocument("test.py", "    x = 1\ny = 2\n\t\t")
	assert.Equal(t, 4, doc.FirstNonWhitespace(0))
	assert.Equal(t, 0, doc.FirstNonWhitespace(1))
	assert.Equal(t, 0, doc.FirstNonWhitespace(2))
}

func TestRange_Union(t *testing.T) {
	a := Range{Start: Position{Line: 1}, End: Position{Line: 2, Column: 5}}
	b := Range{Start: Position{Line: 4}, End: Position{Line: 7, Column: 1}}
	u := Union(a, b)
	assert.Equal(t, a.Start, u.Start)
	assert.Equal(t, b.End, u.End)
	assert.Equal(t, 7, u.Lines())
}
