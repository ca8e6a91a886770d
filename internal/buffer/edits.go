package buffer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/multierr"
)

var (
	ErrOutOfRange   = errors.New("position out of range")
	ErrInvalidRange = errors.New("range start after end")
	ErrOverlap      = errors.New("overlapping edits")
)

// span is an edit resolved to byte offsets.
type span struct {
	start, end int
	text       string
	index      int
}

// lineIndex holds the byte offset of the start of every line.
type lineIndex struct {
	content string
	starts  []int
}

func newLineIndex(content string) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{content: content, starts: starts}
}

// line returns line n without its terminator.
func (li *lineIndex) line(n int) string {
	start := li.starts[n]
	end := len(li.content)
	if n+1 < len(li.starts) {
		end = li.starts[n+1] - 1
	}
	return strings.TrimSuffix(li.content[start:end], "\r")
}

// offset converts an LSP position to a byte offset. A character past the
// end of the line is clamped to the line end. The line just past the last
// one addresses the end of the content.
func (li *lineIndex) offset(pos protocol.Position) (int, error) {
	n := int(pos.Line)
	switch {
	case n < len(li.starts):
		line := li.line(n)
		return li.starts[n] + utf16ToByteOffset(line, int(pos.Character)), nil
	case n == len(li.starts) && pos.Character == 0:
		return len(li.content), nil
	default:
		return 0, fmt.Errorf("%w: line %d of %d", ErrOutOfRange, pos.Line, len(li.starts))
	}
}

// applyEdits returns content with edits applied. Edits are validated
// together; on error content is left as is and every problem is reported.
func applyEdits(content string, edits []protocol.TextEdit) (string, error) {
	li := newLineIndex(content)
	spans := make([]span, 0, len(edits))

	var errs error
	for i, edit := range edits {
		start, err := li.offset(edit.Range.Start)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("edit %d: start: %w", i, err))
			continue
		}
		end, err := li.offset(edit.Range.End)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("edit %d: end: %w", i, err))
			continue
		}
		if start > end {
			errs = multierr.Append(errs, fmt.Errorf("edit %d: %w", i, ErrInvalidRange))
			continue
		}
		spans = append(spans, span{start: start, end: end, text: edit.NewText, index: i})
	}
	if errs != nil {
		return content, errs
	}

	// Inserts at the same offset keep the order the server sent them in.
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			errs = multierr.Append(errs, fmt.Errorf("edits %d and %d: %w", spans[i-1].index, spans[i].index, ErrOverlap))
		}
	}
	if errs != nil {
		return content, errs
	}

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, s := range spans {
		b.WriteString(content[last:s.start])
		b.WriteString(s.text)
		last = s.end
	}
	b.WriteString(content[last:])
	return b.String(), nil
}

// utf16ToByteOffset converts a UTF-16 offset within s to a byte offset,
// clamped to len(s).
func utf16ToByteOffset(s string, utf16Off int) int {
	if utf16Off <= 0 {
		return 0
	}
	count := 0
	for i, r := range s {
		if count >= utf16Off {
			return i
		}
		if r >= 0x10000 {
			count += 2
		} else {
			count++
		}
	}
	return len(s)
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
