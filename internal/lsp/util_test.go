package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/harry-hov/lspfmt/internal/buffer"
	"github.com/harry-hov/lspfmt/internal/tools"
)

func TestDiffEdits(t *testing.T) {
	tests := []struct {
		name          string
		before, after string
	}{
		{"middle line", "a\nb\nc\n", "a\nB\nc\n"},
		{"insert lines", "a\nc\n", "a\nb1\nb2\nc\n"},
		{"delete lines", "a\nb\nc\nd\n", "a\nd\n"},
		{"first line", "x\ny\n", "X\ny\n"},
		{"add final newline", "x\ny", "x\ny\n"},
		{"drop final newline", "x\ny\n", "x\ny"},
		{"from empty", "", "package a\n"},
		{"to empty", "package a\n", ""},
		{"repeated lines", "a\na\na\n", "a\na\n"},
		{"non ascii", "å\n😀 x\n", "å\n😀 y\n"},
		{"two hunks", "a\nb\nc\nd\ne\n", "A\nb\nc\nd\nE\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edits := diffEdits(tt.before, tt.after)
			require.NotEmpty(t, edits)

			doc := buffer.New("/tmp/a.txt", tt.before)
			require.NoError(t, doc.ApplyEdits(edits))
			assert.Equal(t, tt.after, doc.Text())
		})
	}
}

func TestDiffEditsMinimal(t *testing.T) {
	edits := diffEdits("a\nb\nc\n", "a\nB\nc\n")
	require.Len(t, edits, 1)
	assert.Equal(t, rangeOf(1, 0, 2, 0), edits[0].Range)
	assert.Equal(t, "B\n", edits[0].NewText)

	edits = diffEdits("a\nb\nc\nd\ne\n", "A\nb\nc\nd\nE\n")
	require.Len(t, edits, 2)
	assert.Equal(t, rangeOf(0, 0, 1, 0), edits[0].Range)
	assert.Equal(t, rangeOf(4, 0, 5, 0), edits[1].Range)

	edits = diffEdits("same\n", "same\n")
	assert.NotNil(t, edits)
	assert.Empty(t, edits)
}

func TestAdvance(t *testing.T) {
	assert.Equal(t, protocol.Position{Line: 0, Character: 2}, advance(protocol.Position{}, "ab"))
	assert.Equal(t, protocol.Position{Line: 1}, advance(protocol.Position{}, "a\n"))
	assert.Equal(t, protocol.Position{Line: 3, Character: 3}, advance(protocol.Position{Line: 1}, "a\n\n😀b"))
	assert.Equal(t, protocol.Position{Line: 2, Character: 5}, advance(protocol.Position{Line: 2, Character: 4}, "å"))
}

func TestRangeEdits(t *testing.T) {
	const src = "\ta  \n\t\tb\t\nc \n"
	indent := tools.Indent{TabSize: 2, InsertSpaces: true}

	tests := []struct {
		name string
		rng  protocol.Range
		want string
	}{
		{"first line", rangeOf(0, 1, 0, 2), "  a\n\t\tb\t\nc \n"},
		{"ends at line start", rangeOf(0, 0, 1, 0), "  a\n\t\tb\t\nc \n"},
		{"two lines", rangeOf(1, 0, 2, 1), "\ta  \n    b\nc\n"},
		{"past end", rangeOf(2, 0, 9, 0), "\ta  \n\t\tb\t\nc\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := buffer.New("/tmp/a.txt", src)
			require.NoError(t, doc.ApplyEdits(rangeEdits(src, tt.rng, indent)))
			assert.Equal(t, tt.want, doc.Text())
		})
	}

	assert.Empty(t, rangeEdits("ok\n", rangeOf(0, 0, 1, 0), indent))
	assert.NotNil(t, rangeEdits("ok\n", rangeOf(5, 0, 6, 0), indent))
}

func rangeOf(l1, c1, l2, c2 uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: l1, Character: c1},
		End:   protocol.Position{Line: l2, Character: c2},
	}
}
