package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

type OutcomeKind int

const (
	OutcomeEdits OutcomeKind = iota
	OutcomeServerError
	OutcomeTimeout
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeEdits:
		return "edits"
	case OutcomeServerError:
		return "server error"
	case OutcomeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the resolution of one formatting request. Edits is set only
// for OutcomeEdits and Err only for OutcomeServerError.
type Outcome struct {
	Kind  OutcomeKind
	Edits []protocol.TextEdit
	Err   *ServerError
}

func editsOutcome(result json.RawMessage) Outcome {
	var edits []protocol.TextEdit
	if len(result) > 0 && !bytes.Equal(result, []byte("null")) {
		if err := json.Unmarshal(result, &edits); err != nil {
			return errorOutcome(&ServerError{
				Code:    jsonrpc2.InternalError,
				Message: fmt.Sprintf("decode text edits: %v", err),
			})
		}
	}
	return Outcome{Kind: OutcomeEdits, Edits: edits}
}

func errorOutcome(err *ServerError) Outcome {
	if err == nil {
		err = &ServerError{Code: jsonrpc2.InternalError, Message: "unknown error"}
	}
	return Outcome{Kind: OutcomeServerError, Err: err}
}
