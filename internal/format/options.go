package format

import "go.lsp.dev/protocol"

const DefaultTabSize = 4

// ResolveOptions derives the formatting options sent with a request.
// Spaces are always requested; whether to keep tabs is left to the server.
func ResolveOptions(doc Document) protocol.FormattingOptions {
	tabSize := doc.TabSize()
	if tabSize <= 0 {
		tabSize = DefaultTabSize
	}
	return protocol.FormattingOptions{
		TabSize:      uint32(tabSize),
		InsertSpaces: true,
	}
}

// singleSelection returns the document's selection if there is exactly one
// and it is not empty.
func singleSelection(doc Document) (protocol.Range, bool) {
	sels := doc.Selections()
	if len(sels) != 1 {
		return protocol.Range{}, false
	}
	sel := sels[0]
	if sel.Start == sel.End {
		return protocol.Range{}, false
	}
	return sel, true
}
