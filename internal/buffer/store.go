package buffer

import (
	"errors"
	"path/filepath"

	cmap "github.com/orcaman/concurrent-map/v2"
)

var (
	ErrAlreadyOpen = errors.New("document already open")
	ErrNotOpen     = errors.New("document not open")
)

// Store holds the open documents, keyed by cleaned path.
type Store struct {
	docs cmap.ConcurrentMap[string, *Document]
}

func NewStore() *Store {
	return &Store{
		docs: cmap.New[*Document](),
	}
}

func (s *Store) Open(path, content string, opts ...Option) (*Document, error) {
	doc := New(path, content, opts...)
	if !s.docs.SetIfAbsent(filepath.Clean(path), doc) {
		return nil, ErrAlreadyOpen
	}
	return doc, nil
}

func (s *Store) Get(path string) (*Document, bool) {
	return s.docs.Get(filepath.Clean(path))
}

// Close removes the document from the store and closes it.
func (s *Store) Close(path string) error {
	doc, ok := s.docs.Pop(filepath.Clean(path))
	if !ok {
		return ErrNotOpen
	}
	doc.Close()
	return nil
}

func (s *Store) Len() int {
	return s.docs.Count()
}
