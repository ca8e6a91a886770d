package format

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// Request is a single formatting request. A nil Range formats the whole
// document.
type Request struct {
	URI     protocol.DocumentURI
	Options protocol.FormattingOptions
	Range   *protocol.Range
}

func NewRequest(path string, opts protocol.FormattingOptions, rng *protocol.Range) *Request {
	return &Request{
		URI:     protocol.DocumentURI(uri.File(path)),
		Options: opts,
		Range:   rng,
	}
}

func (r *Request) Method() string {
	if r.Range != nil {
		return protocol.MethodTextDocumentRangeFormatting
	}
	return protocol.MethodTextDocumentFormatting
}

func (r *Request) Params() any {
	doc := protocol.TextDocumentIdentifier{URI: r.URI}
	if r.Range != nil {
		return &protocol.DocumentRangeFormattingParams{
			TextDocument: doc,
			Range:        *r.Range,
			Options:      r.Options,
		}
	}
	return &protocol.DocumentFormattingParams{
		TextDocument: doc,
		Options:      r.Options,
	}
}
