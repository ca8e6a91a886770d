package lsp

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"go.lsp.dev/protocol"

	"github.com/harry-hov/lspfmt/internal/buffer"
	"github.com/harry-hov/lspfmt/internal/tools"
)

// splitLines splits src after each newline. A trailing newline does not
// start another line.
func splitLines(src string) []string {
	if src == "" {
		return nil
	}
	lines := strings.SplitAfter(src, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// diffEdits returns the edits turning before into after, one per run of
// changed lines.
func diffEdits(before, after string) []protocol.TextEdit {
	edits := []protocol.TextEdit{}
	if before == after {
		return edits
	}

	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var (
		pos protocol.Position
		cur *protocol.TextEdit
	)
	flush := func() {
		if cur != nil {
			edits = append(edits, *cur)
			cur = nil
		}
	}
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffEqual:
			flush()
			pos = advance(pos, d.Text)
		case diffpatch.DiffDelete:
			if cur == nil {
				cur = &protocol.TextEdit{Range: protocol.Range{Start: pos, End: pos}}
			}
			pos = advance(pos, d.Text)
			cur.Range.End = pos
		case diffpatch.DiffInsert:
			if cur == nil {
				cur = &protocol.TextEdit{Range: protocol.Range{Start: pos, End: pos}}
			}
			cur.NewText += d.Text
		}
	}
	flush()
	return edits
}

// advance moves pos past text.
func advance(pos protocol.Position, text string) protocol.Position {
	n := strings.Count(text, "\n")
	if n == 0 {
		pos.Character += uint32(buffer.UTF16Len(text))
		return pos
	}
	pos.Line += uint32(n)
	pos.Character = uint32(buffer.UTF16Len(text[strings.LastIndex(text, "\n")+1:]))
	return pos
}

// rangeEdits formats every line touched by rng, one edit per changed line.
// A range ending at the start of a line does not touch that line.
func rangeEdits(src string, rng protocol.Range, indent tools.Indent) []protocol.TextEdit {
	lines := splitLines(src)
	first, last := int(rng.Start.Line), int(rng.End.Line)
	if rng.End.Character == 0 && last > first {
		last--
	}
	if last >= len(lines) {
		last = len(lines) - 1
	}

	edits := []protocol.TextEdit{}
	for i := first; i <= last; i++ {
		text, _ := tools.SplitEOL(lines[i])
		formatted := tools.FormatLine(text, indent)
		if formatted == text {
			continue
		}
		edits = append(edits, protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(i)},
				End:   protocol.Position{Line: uint32(i), Character: uint32(buffer.UTF16Len(text))},
			},
			NewText: formatted,
		})
	}
	return edits
}

func indentOf(opts protocol.FormattingOptions) tools.Indent {
	return tools.Indent{TabSize: int(opts.TabSize), InsertSpaces: opts.InsertSpaces}
}
