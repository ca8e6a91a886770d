package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/multierr"

	"github.com/harry-hov/lspfmt/internal/format"
	"github.com/harry-hov/lspfmt/internal/version"
)

const clientName = "lspfmt"

// Session is an initialized connection to one language server.
type Session struct {
	conn   jsonrpc2.Conn
	logger *slog.Logger
	root   string

	info         *protocol.ServerInfo
	capabilities protocol.ServerCapabilities
	// raw holds the capability object as sent, so capabilities the
	// protocol package does not model can still be queried.
	raw map[string]json.RawMessage

	// wait releases whatever backs the connection, such as a child process.
	wait func() error

	closeOnce sync.Once
	closeErr  error
}

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRootDir sets the workspace root sent in the initialize request.
func WithRootDir(dir string) Option {
	return func(s *Session) {
		s.root = dir
	}
}

// Dial starts a JSON-RPC connection over rwc and runs the initialize
// handshake.
func Dial(ctx context.Context, rwc io.ReadWriteCloser, opts ...Option) (*Session, error) {
	s := &Session{
		conn:   jsonrpc2.NewConn(jsonrpc2.NewStream(rwc)),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	// The read loop outlives the dial context.
	s.conn.Go(context.WithoutCancel(ctx), jsonrpc2.ReplyHandler(s.handle))

	if err := s.initialize(ctx); err != nil {
		return nil, multierr.Append(err, s.conn.Close())
	}
	return s, nil
}

func (s *Session) initialize(ctx context.Context) error {
	params := &protocol.InitializeParams{
		ProcessID: int32(os.Getpid()),
		ClientInfo: &protocol.ClientInfo{
			Name:    clientName,
			Version: version.Version,
		},
	}
	if s.root != "" {
		params.RootURI = protocol.DocumentURI(uri.File(s.root))
	}

	var raw json.RawMessage
	if _, err := s.conn.Call(ctx, protocol.MethodInitialize, params, &raw); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	var result protocol.InitializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("initialize: decode result: %w", err)
	}
	var caps struct {
		Capabilities map[string]json.RawMessage `json:"capabilities"`
	}
	if err := json.Unmarshal(raw, &caps); err != nil {
		return fmt.Errorf("initialize: decode capabilities: %w", err)
	}
	s.info = result.ServerInfo
	s.capabilities = result.Capabilities
	s.raw = caps.Capabilities

	if s.info != nil {
		s.logger.Info("initialized", "server", s.info.Name, "version", s.info.Version)
	}
	return s.conn.Notify(ctx, protocol.MethodInitialized, &protocol.InitializedParams{})
}

// handle serves the requests and notifications the server sends us.
func (s *Session) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	switch req.Method() {
	case protocol.MethodWindowLogMessage, protocol.MethodWindowShowMessage:
		var params protocol.LogMessageParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, fmt.Errorf("%w: %s", jsonrpc2.ErrParse, err))
		}
		s.logger.Debug("server message", "type", params.Type, "message", params.Message)
		return reply(ctx, nil, nil)
	case protocol.MethodTextDocumentPublishDiagnostics:
		return reply(ctx, nil, nil)
	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

// HasCapability reports whether the server advertised name with a value
// other than false or null.
func (s *Session) HasCapability(name string) bool {
	v, ok := s.raw[name]
	if !ok {
		return false
	}
	v = bytes.TrimSpace(v)
	return len(v) > 0 && !bytes.Equal(v, []byte("false")) && !bytes.Equal(v, []byte("null"))
}

func (s *Session) Capabilities() protocol.ServerCapabilities {
	return s.capabilities
}

func (s *Session) ServerInfo() *protocol.ServerInfo {
	return s.info
}

// SendRequest implements format.Session. The call runs on its own
// goroutine; exactly one callback is invoked from it, also when the
// connection terminates before the server replies.
func (s *Session) SendRequest(ctx context.Context, method string, params any, onSuccess func(json.RawMessage), onError func(*format.ServerError)) {
	if s.closed() {
		onError(toServerError(ErrClosed))
		return
	}
	go func() {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		// Pending calls are not released when the read loop stops.
		go func() {
			select {
			case <-s.conn.Done():
				cancel()
			case <-ctx.Done():
			}
		}()

		var result json.RawMessage
		if _, err := s.conn.Call(ctx, method, params, &result); err != nil {
			if s.closed() {
				err = ErrClosed
			}
			onError(toServerError(err))
			return
		}
		onSuccess(result)
	}()
}

func (s *Session) closed() bool {
	select {
	case <-s.conn.Done():
		return true
	default:
		return false
	}
}

func toServerError(err error) *format.ServerError {
	var rpcErr *jsonrpc2.Error
	if errors.As(err, &rpcErr) {
		return &format.ServerError{Code: rpcErr.Code, Message: rpcErr.Message}
	}
	return &format.ServerError{Code: jsonrpc2.InternalError, Message: err.Error()}
}

func (s *Session) DidOpen(ctx context.Context, path, languageID, text string, version int32) error {
	return s.conn.Notify(ctx, protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        protocol.DocumentURI(uri.File(path)),
			LanguageID: protocol.LanguageIdentifier(languageID),
			Version:    version,
			Text:       text,
		},
	})
}

// DidChange sends the full content of the document.
func (s *Session) DidChange(ctx context.Context, path, text string, version int32) error {
	params := &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri.File(path))},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: text}},
	}
	return s.conn.Notify(ctx, protocol.MethodTextDocumentDidChange, params)
}

func (s *Session) DidSave(ctx context.Context, path, text string) error {
	return s.conn.Notify(ctx, protocol.MethodTextDocumentDidSave, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri.File(path))},
		Text:         text,
	})
}

func (s *Session) DidClose(ctx context.Context, path string) error {
	return s.conn.Notify(ctx, protocol.MethodTextDocumentDidClose, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri.File(path))},
	})
}

// Close shuts the server down and releases the connection. It is safe to
// call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		var (
			errs   error
			result json.RawMessage
		)
		if _, err := s.conn.Call(ctx, protocol.MethodShutdown, nil, &result); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("shutdown: %w", err))
		}
		if err := s.conn.Notify(ctx, protocol.MethodExit, nil); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("exit: %w", err))
		}
		if err := s.conn.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = multierr.Append(errs, fmt.Errorf("close: %w", err))
		}
		if s.wait != nil {
			errs = multierr.Append(errs, s.wait())
		}
		s.closeErr = errs
	})
	return s.closeErr
}

// Done is closed when the connection has terminated.
func (s *Session) Done() <-chan struct{} {
	return s.conn.Done()
}
