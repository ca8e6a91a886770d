package client

import (
	"context"
	"path/filepath"
	"strings"

	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/multierr"

	"github.com/harry-hov/lspfmt/internal/format"
)

// AnyExtension matches documents no other session claims.
const AnyExtension = ""

// Registry maps file extensions to the session serving them.
type Registry struct {
	sessions cmap.ConcurrentMap[string, *Session]
}

func NewRegistry() *Registry {
	return &Registry{sessions: cmap.New[*Session]()}
}

// Attach routes documents with extension ext (".go", or AnyExtension) to s.
func (r *Registry) Attach(ext string, s *Session) error {
	if !r.sessions.SetIfAbsent(normalizeExt(ext), s) {
		return ErrAlreadyAttached
	}
	return nil
}

// Detach removes and returns the session for ext without closing it.
func (r *Registry) Detach(ext string) (*Session, bool) {
	return r.sessions.Pop(normalizeExt(ext))
}

func (r *Registry) Lookup(path string) (*Session, bool) {
	if s, ok := r.sessions.Get(normalizeExt(filepath.Ext(path))); ok {
		return s, true
	}
	return r.sessions.Get(AnyExtension)
}

// SessionFor implements format.Registry.
func (r *Registry) SessionFor(doc format.Document) (format.Session, bool) {
	s, ok := r.Lookup(doc.Path())
	if !ok {
		return nil, false
	}
	return s, true
}

// Close closes every attached session, once each.
func (r *Registry) Close(ctx context.Context) error {
	var errs error
	seen := map[*Session]bool{}
	for _, ext := range r.sessions.Keys() {
		s, ok := r.sessions.Pop(ext)
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		errs = multierr.Append(errs, s.Close(ctx))
	}
	return errs
}

func normalizeExt(ext string) string {
	if ext == "" {
		return ext
	}
	return "." + strings.ToLower(strings.TrimPrefix(ext, "."))
}
