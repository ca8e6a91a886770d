package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

func edit(l1, c1, l2, c2 uint32, text string) protocol.TextEdit {
	return protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: l1, Character: c1},
			End:   protocol.Position{Line: l2, Character: c2},
		},
		NewText: text,
	}
}

func TestApplyEdits(t *testing.T) {
	tests := []struct {
		name    string
		content string
		edits   []protocol.TextEdit
		want    string
	}{
		{
			name:    "replace prefix of first line",
			content: "\t\tfoo()\nbar\n",
			edits:   []protocol.TextEdit{edit(0, 0, 0, 5, "  ")},
			want:    "  ()\nbar\n",
		},
		{
			name:    "insert",
			content: "ab\n",
			edits:   []protocol.TextEdit{edit(0, 1, 0, 1, "X")},
			want:    "aXb\n",
		},
		{
			name:    "multiple edits given out of order",
			content: "one\ntwo\nthree\n",
			edits: []protocol.TextEdit{
				edit(2, 0, 2, 5, "3"),
				edit(0, 0, 0, 3, "1"),
			},
			want: "1\ntwo\n3\n",
		},
		{
			name:    "inserts at same position keep order",
			content: "x",
			edits: []protocol.TextEdit{
				edit(0, 0, 0, 0, "a"),
				edit(0, 0, 0, 0, "b"),
			},
			want: "abx",
		},
		{
			name:    "insert before replacement at same start",
			content: "hello",
			edits: []protocol.TextEdit{
				edit(0, 0, 0, 5, "bye"),
				edit(0, 0, 0, 0, ">"),
			},
			want: ">bye",
		},
		{
			name:    "delete across lines",
			content: "a\nb\nc\n",
			edits:   []protocol.TextEdit{edit(0, 1, 2, 0, "")},
			want:    "ac\n",
		},
		{
			name:    "character past end of line is clamped",
			content: "abc\ndef\n",
			edits:   []protocol.TextEdit{edit(0, 1, 0, 99, "")},
			want:    "a\ndef\n",
		},
		{
			name:    "end of content",
			content: "abc\n",
			edits:   []protocol.TextEdit{edit(0, 0, 2, 0, "xyz\n")},
			want:    "xyz\n",
		},
		{
			name:    "utf16 columns",
			content: "😀a😀b\n",
			edits:   []protocol.TextEdit{edit(0, 2, 0, 3, "")},
			want:    "😀😀b\n",
		},
		{
			name:    "crlf line end is not part of the line",
			content: "ab\r\ncd\r\n",
			edits:   []protocol.TextEdit{edit(0, 0, 0, 10, "x")},
			want:    "x\r\ncd\r\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := New("/tmp/a.go", tt.content)
			require.NoError(t, doc.ApplyEdits(tt.edits))
			assert.Equal(t, tt.want, doc.Text())
			assert.Equal(t, int32(2), doc.Version())
			assert.Equal(t, 1, doc.UndoDepth())
		})
	}
}

func TestApplyEditsRejected(t *testing.T) {
	tests := []struct {
		name  string
		edits []protocol.TextEdit
		want  error
	}{
		{"line past end", []protocol.TextEdit{edit(5, 0, 5, 1, "x")}, ErrOutOfRange},
		{"eof line with character", []protocol.TextEdit{edit(3, 1, 3, 1, "x")}, ErrOutOfRange},
		{"start after end", []protocol.TextEdit{edit(1, 2, 0, 0, "x")}, ErrInvalidRange},
		{"overlap", []protocol.TextEdit{edit(0, 0, 0, 3, "x"), edit(0, 2, 1, 0, "y")}, ErrOverlap},
		{
			"valid edit with invalid one",
			[]protocol.TextEdit{edit(0, 0, 0, 1, "x"), edit(9, 0, 9, 0, "y")},
			ErrOutOfRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const content = "abc\ndef\n"
			doc := New("/tmp/a.go", content)
			err := doc.ApplyEdits(tt.edits)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, content, doc.Text())
			assert.Equal(t, int32(1), doc.Version())
			assert.Zero(t, doc.UndoDepth())
		})
	}
}

func TestApplyNoEdits(t *testing.T) {
	doc := New("/tmp/a.go", "package a\n")
	var changes int
	doc.Watch(func(Change) { changes++ })

	require.NoError(t, doc.ApplyEdits(nil))
	require.NoError(t, doc.ApplyEdits([]protocol.TextEdit{}))
	assert.Equal(t, "package a\n", doc.Text())
	assert.Equal(t, int32(1), doc.Version())
	assert.Zero(t, changes)
}

func TestApplyIsOneUndoStep(t *testing.T) {
	doc := New("/tmp/a.go", "a b c\n")
	var changes []Change
	doc.Watch(func(c Change) { changes = append(changes, c) })

	require.NoError(t, doc.ApplyEdits([]protocol.TextEdit{
		edit(0, 0, 0, 1, "A"),
		edit(0, 2, 0, 3, "B"),
		edit(0, 4, 0, 5, "C"),
	}))
	require.Len(t, changes, 1)
	assert.Equal(t, "a b c\n", changes[0].Before)
	assert.Equal(t, "A B C\n", changes[0].After)

	require.True(t, doc.Undo())
	assert.Equal(t, "a b c\n", doc.Text())
	assert.False(t, doc.Undo())
}

func TestClosedDocument(t *testing.T) {
	doc := New("/tmp/a.go", "x")
	doc.Close()
	assert.True(t, doc.Closed())
	assert.ErrorIs(t, doc.ApplyEdits([]protocol.TextEdit{edit(0, 0, 0, 1, "y")}), ErrClosed)
	assert.ErrorIs(t, doc.SetText("y"), ErrClosed)
	assert.Equal(t, "x", doc.Text())
}

func TestSelections(t *testing.T) {
	doc := New("/tmp/a.go", "abc\n")
	sel := protocol.Range{End: protocol.Position{Character: 2}}
	doc.Select(sel)

	got := doc.Selections()
	require.Len(t, got, 1)
	got[0].End.Character = 3
	assert.Equal(t, []protocol.Range{sel}, doc.Selections())
}

func TestStore(t *testing.T) {
	s := NewStore()
	doc, err := s.Open("/tmp/dir/../a.go", "x", WithTabSize(2))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.TabSize())

	_, err = s.Open("/tmp/a.go", "y")
	assert.ErrorIs(t, err, ErrAlreadyOpen)

	got, ok := s.Get("/tmp/a.go")
	require.True(t, ok)
	assert.Same(t, doc, got)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Close("/tmp/a.go"))
	assert.True(t, doc.Closed())
	assert.ErrorIs(t, s.Close("/tmp/a.go"), ErrNotOpen)
}

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 0, UTF16Len(""))
	assert.Equal(t, 3, UTF16Len("abc"))
	assert.Equal(t, 3, UTF16Len("😀a"))
}
