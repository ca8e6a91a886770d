package lsp

import (
	"context"
	"encoding/json"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

func (s *server) DidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return sendParseError(ctx, reply, err)
	}

	s.snapshot.Set(&File{
		URI:     params.TextDocument.URI,
		Src:     []byte(params.TextDocument.Text),
		Version: params.TextDocument.Version,
	})

	s.logger.Info("open", "file", params.TextDocument.URI.Filename(), "open", s.snapshot.Len())
	return reply(ctx, nil, nil)
}

func (s *server) DidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return sendParseError(ctx, reply, err)
	}

	s.snapshot.Delete(params.TextDocument.URI.Filename())
	s.logger.Info("close", "file", params.TextDocument.URI.Filename())
	return reply(ctx, nil, nil)
}

func (s *server) DidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return sendParseError(ctx, reply, err)
	}

	uri := params.TextDocument.URI
	if _, ok := s.snapshot.Get(uri.Filename()); !ok {
		return reply(ctx, nil, notOpenError(uri))
	}
	// Full sync: the last change carries the whole text.
	if n := len(params.ContentChanges); n > 0 {
		s.snapshot.Set(&File{
			URI:     uri,
			Src:     []byte(params.ContentChanges[n-1].Text),
			Version: params.TextDocument.Version,
		})
	}

	s.logger.Debug("change", "file", uri.Filename(), "version", params.TextDocument.Version)
	return reply(ctx, nil, nil)
}

func (s *server) DidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return sendParseError(ctx, reply, err)
	}

	uri := params.TextDocument.URI
	file, ok := s.snapshot.Get(uri.Filename())
	if !ok {
		return reply(ctx, nil, notOpenError(uri))
	}
	if params.Text != "" {
		s.snapshot.Set(&File{URI: uri, Src: []byte(params.Text), Version: file.Version})
	}

	s.logger.Info("save", "file", uri.Filename())
	return reply(ctx, nil, nil)
}
