package buffer

import (
	"errors"
	"slices"
	"sync"

	"go.lsp.dev/protocol"
)

var ErrClosed = errors.New("document closed")

// Change describes one transition of a document's content.
type Change struct {
	Path    string
	Version int32
	Before  string
	After   string
}

// Document is an open text buffer. Every mutation is one undo step and one
// version bump.
type Document struct {
	mu sync.RWMutex

	path       string
	languageID string
	content    string
	version    int32
	tabSize    int
	selections []protocol.Range
	history    []string
	closed     bool

	watchers []func(Change)
}

type Option func(*Document)

func WithTabSize(n int) Option {
	return func(d *Document) {
		d.tabSize = n
	}
}

func WithLanguageID(id string) Option {
	return func(d *Document) {
		d.languageID = id
	}
}

func New(path, content string, opts ...Option) *Document {
	d := &Document{
		path:    path,
		content: content,
		version: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Document) Path() string {
	return d.path
}

func (d *Document) LanguageID() string {
	return d.languageID
}

func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

func (d *Document) Version() int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

func (d *Document) TabSize() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tabSize
}

func (d *Document) SetTabSize(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tabSize = n
}

func (d *Document) Selections() []protocol.Range {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.selections)
}

// Select replaces the current selections.
func (d *Document) Select(ranges ...protocol.Range) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selections = slices.Clone(ranges)
}

func (d *Document) Closed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.closed
}

// Close marks the document closed. Later mutations fail with ErrClosed.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.watchers = nil
}

// Watch registers fn to be called after every content change.
func (d *Document) Watch(fn func(Change)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.watchers = append(d.watchers, fn)
}

// ApplyEdits applies edits as a single change. Either all edits are applied
// or the content is left untouched. No edits is a no-op.
func (d *Document) ApplyEdits(edits []protocol.TextEdit) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	if len(edits) == 0 {
		d.mu.Unlock()
		return nil
	}
	next, err := applyEdits(d.content, edits)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	change := d.replaceLocked(next)
	watchers := slices.Clone(d.watchers)
	d.mu.Unlock()

	d.notify(watchers, change)
	return nil
}

// SetText replaces the whole content, as typing or pasting would.
func (d *Document) SetText(content string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	change := d.replaceLocked(content)
	watchers := slices.Clone(d.watchers)
	d.mu.Unlock()

	d.notify(watchers, change)
	return nil
}

// Undo reverts the last change. It reports false if there is nothing to
// undo.
func (d *Document) Undo() bool {
	d.mu.Lock()
	if d.closed || len(d.history) == 0 {
		d.mu.Unlock()
		return false
	}
	prev := d.history[len(d.history)-1]
	d.history = d.history[:len(d.history)-1]
	before := d.content
	d.content = prev
	d.version++
	change := Change{Path: d.path, Version: d.version, Before: before, After: prev}
	watchers := slices.Clone(d.watchers)
	d.mu.Unlock()

	d.notify(watchers, change)
	return true
}

// UndoDepth is the number of changes Undo can revert.
func (d *Document) UndoDepth() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.history)
}

func (d *Document) replaceLocked(content string) Change {
	before := d.content
	d.history = append(d.history, before)
	d.content = content
	d.version++
	return Change{Path: d.path, Version: d.version, Before: before, After: content}
}

func (d *Document) notify(watchers []func(Change), change Change) {
	for _, fn := range watchers {
		fn(change)
	}
}
