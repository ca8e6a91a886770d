package format

import (
	"context"
	"errors"
	"log/slog"

	"go.lsp.dev/protocol"
)

// Command is a user-invoked editor command.
type Command interface {
	Name() string
	IsEnabled(doc Document) bool

	// Run dispatches the command and returns without waiting for the
	// server. The outcome is applied through the Formatter's Executor.
	Run(ctx context.Context, doc Document) error
}

const (
	CommandFormatDocument  = "lsp_format_document"
	CommandFormatSelection = "lsp_format_document_range"
)

type formatCommand struct {
	f          *Formatter
	name       string
	capability string
	selection  bool
}

// FormatDocumentCommand formats the whole document.
func (f *Formatter) FormatDocumentCommand() Command {
	return &formatCommand{
		f:          f,
		name:       CommandFormatDocument,
		capability: CapabilityFormatting,
	}
}

// FormatSelectionCommand formats the single selected range.
func (f *Formatter) FormatSelectionCommand() Command {
	return &formatCommand{
		f:          f,
		name:       CommandFormatSelection,
		capability: CapabilityRangeFormatting,
		selection:  true,
	}
}

func (c *formatCommand) Name() string {
	return c.name
}

func (c *formatCommand) IsEnabled(doc Document) bool {
	if doc.Closed() {
		return false
	}
	if _, ok := c.f.sessionWith(doc, c.capability); !ok {
		return false
	}
	if c.selection {
		_, ok := singleSelection(doc)
		return ok
	}
	return true
}

func (c *formatCommand) Run(ctx context.Context, doc Document) error {
	if doc.Closed() {
		return ErrDocumentClosed
	}
	session, ok := c.f.sessionWith(doc, c.capability)
	if !ok {
		return ErrCapabilityAbsent
	}
	var rng *protocol.Range
	if c.selection {
		sel, ok := singleSelection(doc)
		if !ok {
			return ErrNoSelection
		}
		rng = &sel
	}
	logger := c.f.logger.With("command", c.name, "path", doc.Path())

	op, superseded := c.f.inflight.begin(docKey(doc), doc.Version())
	if superseded {
		logger.Debug("supersedes pending request")
	}
	req := NewRequest(doc.Path(), ResolveOptions(doc), rng)

	CoordinateAsync(ctx, session, req, func(o Outcome) {
		c.f.exec(func() {
			c.finish(logger, doc, op, o)
		})
	})
	return nil
}

func (c *formatCommand) finish(logger *slog.Logger, doc Document, op *operation, o Outcome) {
	if o.Kind == OutcomeServerError {
		c.f.inflight.abandon(op)
		logger.Warn("error while formatting", "code", o.Err.Code, "message", o.Err.Message)
		return
	}
	if err := c.f.complete(doc, op, o); err != nil {
		if errors.Is(err, ErrSuperseded) {
			logger.Debug("formatting result dropped", "error", err)
			return
		}
		logger.Warn("formatting not applied", "error", err)
		return
	}
	logger.Debug("formatted", "edits", len(o.Edits))
}
