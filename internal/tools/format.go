package tools

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"path/filepath"
	"strings"

	gofumpt "mvdan.cc/gofumpt/format"
	"mvdan.cc/sh/v3/syntax"
)

type FormattingOption int

const (
	Gofmt FormattingOption = iota
	Gofumpt
	// Whitespace trims trailing blanks and rewrites leading tabs. It works
	// on any text.
	Whitespace
	Shfmt
	// Auto picks one of the above from the file name. See ForPath.
	Auto
)

var ErrInvalidOption = errors.New("lspfmt: invalid formatting option")

var optionNames = map[FormattingOption]string{
	Gofmt:      "gofmt",
	Gofumpt:    "gofumpt",
	Whitespace: "whitespace",
	Shfmt:      "shfmt",
	Auto:       "auto",
}

func (o FormattingOption) String() string {
	if name, ok := optionNames[o]; ok {
		return name
	}
	return fmt.Sprintf("FormattingOption(%d)", int(o))
}

func ParseFormattingOption(name string) (FormattingOption, error) {
	for opt, n := range optionNames {
		if n == name {
			return opt, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOption, name)
}

// Indent controls how Whitespace rewrites leading tabs.
type Indent struct {
	TabSize      int
	InsertSpaces bool
}

func Format(data string, opt FormattingOption, indent Indent) ([]byte, error) {
	switch opt {
	case Gofmt:
		return RunGofmt(data)
	case Gofumpt:
		return RunGofumpt(data)
	case Whitespace:
		return RunWhitespace(data, indent), nil
	case Shfmt:
		return RunShfmt(data, indent)
	default:
		return nil, ErrInvalidOption
	}
}

func RunGofmt(data string) ([]byte, error) {
	return format.Source([]byte(data))
}

func RunGofumpt(data string) ([]byte, error) {
	return gofumpt.Source([]byte(data), gofumpt.Options{})
}

// ForPath resolves Auto for the file at path. Other options are returned
// as is.
func ForPath(opt FormattingOption, path string) FormattingOption {
	if opt != Auto {
		return opt
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return Gofumpt
	case ".sh", ".bash":
		return Shfmt
	}
	return Whitespace
}

// RunShfmt indents with indent.TabSize spaces, or with tabs when spaces
// are not requested.
func RunShfmt(data string, indent Indent) ([]byte, error) {
	file, err := syntax.NewParser(syntax.KeepComments(true)).Parse(strings.NewReader(data), "")
	if err != nil {
		return nil, err
	}
	var width uint
	if indent.InsertSpaces && indent.TabSize > 0 {
		width = uint(indent.TabSize)
	}
	var buf bytes.Buffer
	if err := syntax.NewPrinter(syntax.Indent(width)).Print(&buf, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func RunWhitespace(data string, indent Indent) []byte {
	var b strings.Builder
	b.Grow(len(data))
	for _, line := range strings.SplitAfter(data, "\n") {
		text, eol := SplitEOL(line)
		b.WriteString(FormatLine(text, indent))
		b.WriteString(eol)
	}
	return []byte(b.String())
}

// FormatLine formats a single line without its line terminator.
func FormatLine(line string, indent Indent) string {
	line = strings.TrimRight(line, " \t")
	if !indent.InsertSpaces || indent.TabSize <= 0 {
		return line
	}
	tabs := len(line) - len(strings.TrimLeft(line, "\t"))
	return strings.Repeat(" ", tabs*indent.TabSize) + line[tabs:]
}

// SplitEOL separates a line from its "\n" or "\r\n" terminator.
func SplitEOL(line string) (text, eol string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
