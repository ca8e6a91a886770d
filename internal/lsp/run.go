package lsp

import (
	"context"
	"errors"
	"io"
	"os"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/pkg/fakenet"
)

func RunServer(ctx context.Context, opts Options) error {
	return Serve(ctx, fakenet.NewConn("stdio", os.Stdin, os.Stdout), opts)
}

// Serve runs the server over rwc until the client sends exit or the
// stream ends.
func Serve(ctx context.Context, rwc io.ReadWriteCloser, opts Options) error {
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	s := newServer(conn, opts)
	stream := jsonrpc2.HandlerServer(jsonrpc2.ReplyHandler(s.ServerHandler))
	err := stream.ServeStream(ctx, conn)
	if s.exited.Load() || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
