package lsp

import (
	"context"
	"encoding/json"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/harry-hov/lspfmt/internal/tools"
)

func (s *server) Formatting(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentFormattingParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return sendParseError(ctx, reply, err)
	}

	uri := params.TextDocument.URI
	file, ok := s.snapshot.Get(uri.Filename())
	if !ok {
		return reply(ctx, nil, notOpenError(uri))
	}

	formatter := tools.ForPath(s.opts.Formatter, uri.Filename())
	formatted, err := tools.Format(string(file.Src), formatter, indentOf(params.Options))
	if err != nil {
		return reply(ctx, nil, formatError(err))
	}
	edits := diffEdits(string(file.Src), string(formatted))

	s.logger.Info("format", "file", uri.Filename(), "formatter", formatter, "edits", len(edits))
	return s.replyLater(ctx, reply, edits)
}

func (s *server) RangeFormatting(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentRangeFormattingParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return sendParseError(ctx, reply, err)
	}

	uri := params.TextDocument.URI
	file, ok := s.snapshot.Get(uri.Filename())
	if !ok {
		return reply(ctx, nil, notOpenError(uri))
	}

	edits := rangeEdits(string(file.Src), params.Range, indentOf(params.Options))

	s.logger.Info("format range", "file", uri.Filename(), "edits", len(edits))
	return s.replyLater(ctx, reply, edits)
}

// replyLater replies after Options.Delay without holding up the read loop.
func (s *server) replyLater(ctx context.Context, reply jsonrpc2.Replier, result any) error {
	if s.opts.Delay <= 0 {
		return reply(ctx, result, nil)
	}
	go func() {
		t := time.NewTimer(s.opts.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
		if err := reply(ctx, result, nil); err != nil {
			s.logger.Debug("delayed reply", "error", err)
		}
	}()
	return nil
}
