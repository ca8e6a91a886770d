package format

import (
	"errors"
	"fmt"

	"go.lsp.dev/jsonrpc2"
)

var (
	// ErrCapabilityAbsent means no session is attached to the document or
	// the session does not advertise the capability a command needs.
	ErrCapabilityAbsent = errors.New("formatting not supported for document")

	// ErrNoSelection means the range command was run without exactly one
	// non-empty selection.
	ErrNoSelection = errors.New("need exactly one non-empty selection")

	ErrDocumentClosed = errors.New("document closed")

	// ErrStaleEdits means the document changed after the request was sent,
	// so the returned ranges no longer describe its content.
	ErrStaleEdits = errors.New("document changed while formatting")

	// ErrSuperseded means a newer formatting request for the same document
	// was dispatched before this one resolved.
	ErrSuperseded = errors.New("superseded by a newer formatting request")
)

// ServerError is a protocol-level error returned by the language server.
type ServerError struct {
	Code    jsonrpc2.Code
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// ApplicationError is returned when the buffer rejects a set of edits.
type ApplicationError struct {
	Path string
	Err  error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("apply edits to %s: %v", e.Path, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}
