package format

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// slot holds the single outcome of a request. The first resolve wins and
// every later one is dropped.
type slot struct {
	mu      sync.Mutex
	ready   bool
	outcome Outcome
	done    chan struct{}
}

func newSlot() *slot {
	return &slot{done: make(chan struct{})}
}

// resolve stores o if the slot is still empty and reports whether it did.
func (s *slot) resolve(o Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return false
	}
	s.ready = true
	s.outcome = o
	close(s.done)
	return true
}

// wait blocks until the slot is resolved, the deadline elapses or ctx is
// done. In the latter two cases it resolves the slot with a timeout, which
// loses to a reply that was stored first.
func (s *slot) wait(ctx context.Context, deadline time.Duration) Outcome {
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case <-s.done:
	case <-timer.C:
	case <-ctx.Done():
	}
	s.resolve(Outcome{Kind: OutcomeTimeout})

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

func dispatch(ctx context.Context, session Session, req *Request, deliver func(Outcome)) {
	// The request outlives the caller: a timed out wait must not cancel it.
	ctx = context.WithoutCancel(ctx)
	session.SendRequest(ctx, req.Method(), req.Params(),
		func(result json.RawMessage) { deliver(editsOutcome(result)) },
		func(err *ServerError) { deliver(errorOutcome(err)) },
	)
}

// Coordinate sends req and blocks until the server replies or deadline
// elapses. A reply that arrives after the deadline is discarded.
func Coordinate(ctx context.Context, session Session, req *Request, deadline time.Duration) Outcome {
	s := newSlot()
	dispatch(ctx, session, req, func(o Outcome) { s.resolve(o) })
	return s.wait(ctx, deadline)
}

// CoordinateAsync sends req and returns immediately. cont is called once,
// from the session's goroutine, when the server replies.
func CoordinateAsync(ctx context.Context, session Session, req *Request, cont func(Outcome)) {
	s := newSlot()
	dispatch(ctx, session, req, func(o Outcome) {
		if s.resolve(o) {
			cont(o)
		}
	})
}
