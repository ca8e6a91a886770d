package format

import "go.lsp.dev/protocol"

// Apply applies edits to doc in one step. An empty edit list is a no-op.
// Any rejection by the document is returned as an *ApplicationError.
func Apply(doc Document, edits []protocol.TextEdit) error {
	if len(edits) == 0 {
		return nil
	}
	if doc.Closed() {
		return &ApplicationError{Path: doc.Path(), Err: ErrDocumentClosed}
	}
	if err := doc.ApplyEdits(edits); err != nil {
		return &ApplicationError{Path: doc.Path(), Err: err}
	}
	return nil
}
