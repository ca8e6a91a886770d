package format

import (
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// operation is one formatting request in flight for a document.
type operation struct {
	key     string
	version int32

	// done is closed once the operation's outcome has been handled.
	done     chan struct{}
	doneOnce sync.Once
}

func (op *operation) resolve() {
	op.doneOnce.Do(func() { close(op.done) })
}

// inflight tracks the newest operation per document. Starting an operation
// supersedes the pending one, whose outcome is then dropped unapplied.
type inflight struct {
	ops cmap.ConcurrentMap[string, *operation]
}

func newInflight() *inflight {
	return &inflight{ops: cmap.New[*operation]()}
}

// begin registers a new operation for key and reports whether it replaced
// a pending one.
func (r *inflight) begin(key string, version int32) (op *operation, superseded bool) {
	op = &operation{key: key, version: version, done: make(chan struct{})}
	r.ops.Upsert(key, op, func(exist bool, _ *operation, newValue *operation) *operation {
		superseded = exist
		return newValue
	})
	return op, superseded
}

// finish calls fn and drops op if op is still the newest operation for its
// document. It returns ErrSuperseded without calling fn otherwise. fn runs
// under the registry's lock for the document, so a concurrent begin cannot
// slip in between the check and the edit.
func (r *inflight) finish(op *operation, fn func() error) error {
	defer op.resolve()
	var err error
	if !r.ops.RemoveCb(op.key, func(_ string, cur *operation, exists bool) bool {
		if !exists || cur != op {
			return false
		}
		err = fn()
		return true
	}) {
		return ErrSuperseded
	}
	return err
}

// abandon drops op without applying anything.
func (r *inflight) abandon(op *operation) {
	defer op.resolve()
	r.ops.RemoveCb(op.key, func(_ string, cur *operation, exists bool) bool {
		return exists && cur == op
	})
}

// forget drops whatever operation is pending for key.
func (r *inflight) forget(key string) {
	if op, ok := r.ops.Pop(key); ok {
		op.resolve()
	}
}

func (r *inflight) pending(key string) bool {
	return r.ops.Has(key)
}

// current returns the newest operation pending for key.
func (r *inflight) current(key string) (*operation, bool) {
	return r.ops.Get(key)
}
