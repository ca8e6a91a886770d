package format

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// call is a request captured by fakeSession.
type call struct {
	method    string
	params    any
	onSuccess func(json.RawMessage)
	onError   func(*ServerError)
}

func (c *call) succeed(t *testing.T, edits []protocol.TextEdit) {
	t.Helper()
	raw, err := json.Marshal(edits)
	require.NoError(t, err)
	c.onSuccess(raw)
}

// fakeSession records requests and answers them with respond, if set.
// Without respond the request stays pending until the test fires it.
type fakeSession struct {
	caps    map[string]bool
	respond func(c *call)

	mu    sync.Mutex
	calls []*call
	sent  chan *call
}

func newFakeSession(caps ...string) *fakeSession {
	s := &fakeSession{
		caps: map[string]bool{},
		sent: make(chan *call, 16),
	}
	for _, c := range caps {
		s.caps[c] = true
	}
	return s
}

func (s *fakeSession) HasCapability(name string) bool {
	return s.caps[name]
}

func (s *fakeSession) SendRequest(_ context.Context, method string, params any, onSuccess func(json.RawMessage), onError func(*ServerError)) {
	c := &call{method: method, params: params, onSuccess: onSuccess, onError: onError}
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()
	s.sent <- c
	if s.respond != nil {
		go s.respond(c)
	}
}

func (s *fakeSession) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func replyEdits(edits ...protocol.TextEdit) func(*call) {
	raw, _ := json.Marshal(edits)
	return func(c *call) { c.onSuccess(raw) }
}

func replyError(code jsonrpc2.Code, msg string) func(*call) {
	return func(c *call) {
		c.onError(&ServerError{Code: code, Message: msg})
	}
}

type fakeRegistry struct {
	session Session
}

func (r fakeRegistry) SessionFor(Document) (Session, bool) {
	if r.session == nil {
		return nil, false
	}
	return r.session, true
}

// logBuffer is a goroutine safe sink for slog output.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testLogger() (*slog.Logger, *logBuffer) {
	b := &logBuffer{}
	return slog.New(slog.NewTextHandler(b, &slog.HandlerOptions{Level: slog.LevelDebug})), b
}

func textEdit(l1, c1, l2, c2 uint32, text string) protocol.TextEdit {
	return protocol.TextEdit{
		Range: protocol.Range{
			Start: protocol.Position{Line: l1, Character: c1},
			End:   protocol.Position{Line: l2, Character: c2},
		},
		NewText: text,
	}
}
