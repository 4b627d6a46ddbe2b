package file

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// SourceKind tags the variant held by a Source.
type SourceKind int

const (
	// SourceBytes is an in-memory payload.
	SourceBytes SourceKind = iota
	// SourcePath references a file on the local filesystem.
	SourcePath
)

// Source is the content of an upload: either bytes already in memory or a
// path that is opened when the upload runs.
type Source struct {
	kind SourceKind
	data []byte
	path string
}

// FromBytes wraps an in-memory payload.
func FromBytes(data []byte) Source {
	return Source{kind: SourceBytes, data: data}
}

// FromPath references a local file.
func FromPath(path string) Source {
	return Source{kind: SourcePath, path: path}
}

// Kind reports which variant s holds.
func (s Source) Kind() SourceKind {
	return s.kind
}

// Bytes is the payload for SourceBytes, nil otherwise.
func (s Source) Bytes() []byte {
	return s.data
}

// Path is the referenced file for SourcePath, empty otherwise.
func (s Source) Path() string {
	return s.path
}

func (s Source) String() string {
	if s.kind == SourcePath {
		return "file " + s.path
	}
	return fmt.Sprintf("payload (%d bytes)", len(s.data))
}

// open resolves the source into a reader of known size. The returned closer
// must be called on every path once the reader is no longer needed.
func (s Source) open() (io.Reader, int64, func() error, error) {
	switch s.kind {
	case SourceBytes:
		return bytes.NewReader(s.data), int64(len(s.data)), func() error { return nil }, nil
	case SourcePath:
		f, err := os.Open(s.path)
		if err != nil {
			return nil, 0, nil, err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, nil, err
		}
		if info.IsDir() {
			f.Close()
			return nil, 0, nil, fmt.Errorf("%s is a directory", s.path)
		}
		return f, info.Size(), f.Close, nil
	default:
		return nil, 0, nil, fmt.Errorf("unknown source kind %d", s.kind)
	}
}
