package format

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/harry-hov/lspfmt/internal/config"
)

// Formatter formats documents on save and on demand. Save-time formatting
// and both commands share one in-flight registry: only the newest request
// for a document may apply its edits.
type Formatter struct {
	cfg      config.Config
	registry Registry
	logger   *slog.Logger
	exec     Executor

	inflight *inflight
}

type Option func(*Formatter)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Formatter) {
		f.logger = logger
	}
}

// WithExecutor sets where interactive outcomes are applied. By default they
// are applied on the session goroutine that delivered them.
func WithExecutor(exec Executor) Option {
	return func(f *Formatter) {
		f.exec = exec
	}
}

func New(cfg config.Config, registry Registry, opts ...Option) *Formatter {
	f := &Formatter{
		cfg:      cfg,
		registry: registry,
		logger:   slog.Default(),
		exec:     inline,
		inflight: newInflight(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.cfg.FormatOnSaveTimeout <= 0 {
		f.cfg.FormatOnSaveTimeout = config.DefaultFormatOnSaveTimeout
	}
	return f
}

// Forget drops any pending formatting for doc. A reply that arrives later
// is discarded without touching the document. Hosts call it on close.
func (f *Formatter) Forget(doc Document) {
	f.inflight.forget(docKey(doc))
}

// Pending reports whether a formatting request for doc is in flight.
func (f *Formatter) Pending(doc Document) bool {
	return f.inflight.pending(docKey(doc))
}

// Wait blocks until no formatting request for doc is in flight or ctx is
// done. Requests for other documents are not waited for.
func (f *Formatter) Wait(ctx context.Context, doc Document) error {
	key := docKey(doc)
	for {
		op, ok := f.inflight.current(key)
		if !ok {
			return nil
		}
		select {
		case <-op.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (f *Formatter) sessionWith(doc Document, capability string) (Session, bool) {
	if f.registry == nil {
		return nil, false
	}
	session, ok := f.registry.SessionFor(doc)
	if !ok || session == nil {
		return nil, false
	}
	if !session.HasCapability(capability) {
		return nil, false
	}
	return session, true
}

// complete applies an edits outcome for op, unless op was superseded or the
// document changed since the request was sent.
// Document watchers run inside the registry lock and must not call back
// into f.
func (f *Formatter) complete(doc Document, op *operation, o Outcome) error {
	return f.inflight.finish(op, func() error {
		if doc.Closed() {
			return &ApplicationError{Path: doc.Path(), Err: ErrDocumentClosed}
		}
		if doc.Version() != op.version {
			return &ApplicationError{Path: doc.Path(), Err: ErrStaleEdits}
		}
		return Apply(doc, o.Edits)
	})
}

func docKey(doc Document) string {
	return filepath.Clean(doc.Path())
}
