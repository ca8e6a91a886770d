package lsp

import (
	cmap "github.com/orcaman/concurrent-map/v2"
	"go.lsp.dev/protocol"
)

// Snapshot holds the documents the client has open, keyed by filename.
type Snapshot struct {
	file cmap.ConcurrentMap[string, *File]
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		file: cmap.New[*File](),
	}
}

func (s *Snapshot) Get(filePath string) (*File, bool) {
	return s.file.Get(filePath)
}

func (s *Snapshot) Set(f *File) {
	s.file.Set(f.URI.Filename(), f)
}

func (s *Snapshot) Delete(filePath string) {
	s.file.Remove(filePath)
}

func (s *Snapshot) Len() int {
	return s.file.Count()
}

// contains an open document.
type File struct {
	URI     protocol.DocumentURI
	Src     []byte
	Version int32
}
