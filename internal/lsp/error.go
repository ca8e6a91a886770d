package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// codeRequestFailed is the LSP RequestFailed error code.
const codeRequestFailed jsonrpc2.Code = -32803

func sendParseError(ctx context.Context, reply jsonrpc2.Replier, err error) error {
	return reply(ctx, nil, fmt.Errorf("%w: %s", jsonrpc2.ErrParse, err))
}

func notOpenError(uri protocol.DocumentURI) error {
	return jsonrpc2.NewError(jsonrpc2.InvalidParams, "document not open: "+uri.Filename())
}

func formatError(err error) error {
	return jsonrpc2.NewError(codeRequestFailed, err.Error())
}
