package lsp

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/harry-hov/lspfmt/internal/tools"
	"github.com/harry-hov/lspfmt/internal/version"
)

const serverName = "lspfmt"

type Options struct {
	Formatter tools.FormattingOption
	// Delay holds back every formatting reply. Used to exercise client
	// timeouts.
	Delay time.Duration
	// NoRangeFormatting hides the range formatting capability.
	NoRangeFormatting bool
	Logger            *slog.Logger
}

type server struct {
	conn   jsonrpc2.Conn
	opts   Options
	logger *slog.Logger

	snapshot *Snapshot

	exited atomic.Bool
}

func newServer(conn jsonrpc2.Conn, opts Options) *server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &server{
		conn:     conn,
		opts:     opts,
		logger:   logger,
		snapshot: NewSnapshot(),
	}
}

func (s *server) ServerHandler(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case protocol.MethodExit:
		return s.Exit(ctx, reply, req)
	case protocol.MethodInitialize:
		return s.Initialize(ctx, reply, req)
	case protocol.MethodInitialized:
		return s.Initialized(ctx, reply, req)
	case protocol.MethodShutdown:
		return s.Shutdown(ctx, reply, req)
	case protocol.MethodTextDocumentDidChange:
		return s.DidChange(ctx, reply, req)
	case protocol.MethodTextDocumentDidClose:
		return s.DidClose(ctx, reply, req)
	case protocol.MethodTextDocumentDidOpen:
		return s.DidOpen(ctx, reply, req)
	case protocol.MethodTextDocumentDidSave:
		return s.DidSave(ctx, reply, req)
	case protocol.MethodTextDocumentFormatting:
		return s.Formatting(ctx, reply, req)
	case protocol.MethodTextDocumentRangeFormatting:
		if s.opts.NoRangeFormatting {
			return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
		}
		return s.RangeFormatting(ctx, reply, req)
	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func (s *server) Initialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return sendParseError(ctx, reply, err)
	}
	if params.ClientInfo != nil {
		s.logger.Info("initialize", "client", params.ClientInfo.Name, "version", params.ClientInfo.Version)
	}

	return reply(ctx, protocol.InitializeResult{
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: version.Version,
		},
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				Change:    protocol.TextDocumentSyncKindFull,
				OpenClose: true,
				Save: &protocol.SaveOptions{
					IncludeText: true,
				},
			},
			DocumentFormattingProvider:      true,
			DocumentRangeFormattingProvider: !s.opts.NoRangeFormatting,
		},
	}, nil)
}

func (s *server) Initialized(ctx context.Context, reply jsonrpc2.Replier, _ jsonrpc2.Request) error {
	s.logger.Info("initialized")
	return reply(ctx, nil, nil)
}

func (s *server) Shutdown(ctx context.Context, reply jsonrpc2.Replier, _ jsonrpc2.Request) error {
	s.logger.Info("shutdown")
	return reply(ctx, nil, nil)
}

func (s *server) Exit(ctx context.Context, reply jsonrpc2.Replier, _ jsonrpc2.Request) error {
	s.logger.Info("exit")
	s.exited.Store(true)
	if err := s.conn.Close(); err != nil {
		s.logger.Debug("close connection", "error", err)
	}
	return nil
}
