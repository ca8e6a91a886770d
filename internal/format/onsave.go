package format

import (
	"context"
	"fmt"
	"time"
)

// State is a step of the save-time formatting state machine.
type State int

const (
	StateIdle State = iota
	StateCapabilityChecked
	StateRequested
	StateApplied
	StateReported
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapabilityChecked:
		return "capability checked"
	case StateRequested:
		return "requested"
	case StateApplied:
		return "applied"
	case StateReported:
		return "reported"
	case StateTimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// SaveResult describes what PreSave did. State is the terminal state, or
// StateIdle if formatting was skipped. Err is set for StateReported.
type SaveResult struct {
	State   State
	Edits   int
	Err     error
	Elapsed time.Duration
}

// PreSave formats doc before it is written, waiting at most the configured
// timeout. Every failure is logged and reported in the result; the caller
// proceeds with the save whatever the result.
func (f *Formatter) PreSave(ctx context.Context, doc Document) SaveResult {
	start := time.Now()
	res := f.preSave(ctx, doc)
	res.Elapsed = time.Since(start)
	return res
}

func (f *Formatter) preSave(ctx context.Context, doc Document) SaveResult {
	if !f.cfg.FormatOnSave {
		return SaveResult{State: StateIdle}
	}
	session, ok := f.sessionWith(doc, CapabilityFormatting)
	if !ok {
		return SaveResult{State: StateIdle}
	}
	logger := f.logger.With("path", doc.Path())

	op, superseded := f.inflight.begin(docKey(doc), doc.Version())
	if superseded {
		logger.Debug("format on save supersedes pending request")
	}
	req := NewRequest(doc.Path(), ResolveOptions(doc), nil)

	outcome := Coordinate(ctx, session, req, f.cfg.FormatOnSaveTimeout)
	switch outcome.Kind {
	case OutcomeTimeout:
		f.inflight.abandon(op)
		logger.Warn("timeout while formatting before saving", "timeout", f.cfg.FormatOnSaveTimeout)
		return SaveResult{State: StateTimedOut}
	case OutcomeServerError:
		f.inflight.abandon(op)
		logger.Warn("error while formatting", "code", outcome.Err.Code, "message", outcome.Err.Message)
		return SaveResult{State: StateReported, Err: outcome.Err}
	}

	if err := f.complete(doc, op, outcome); err != nil {
		logger.Warn("format on save not applied", "error", err)
		return SaveResult{State: StateReported, Err: err}
	}
	logger.Debug("format on save", "edits", len(outcome.Edits))
	return SaveResult{State: StateApplied, Edits: len(outcome.Edits)}
}
