package format

import (
	"context"
	"encoding/json"

	"go.lsp.dev/protocol"
)

// Capability names as they appear in the server's initialize result.
const (
	CapabilityFormatting      = "documentFormattingProvider"
	CapabilityRangeFormatting = "documentRangeFormattingProvider"
)

// Session is a connection to a language server that has completed the
// initialize handshake.
type Session interface {
	HasCapability(name string) bool

	// SendRequest dispatches a request and returns without waiting. Exactly
	// one of onSuccess or onError is called, exactly once, from a goroutine
	// owned by the session.
	SendRequest(ctx context.Context, method string, params any, onSuccess func(result json.RawMessage), onError func(err *ServerError))
}

// Registry finds the session attached to a document.
type Registry interface {
	SessionFor(doc Document) (Session, bool)
}

// Document is the editor-side view of an open buffer.
type Document interface {
	Path() string

	// TabSize is the configured indent width, or zero if unset.
	TabSize() int
	Selections() []protocol.Range
	Version() int32
	Closed() bool

	// ApplyEdits replaces the content in one step. It either applies every
	// edit or none of them.
	ApplyEdits(edits []protocol.TextEdit) error
}

// Executor runs fn on the context that owns document mutation.
type Executor func(fn func())

func inline(fn func()) { fn() }
