// Package archive provides read-only access to named-entry containers such as
// resource pack zip files, plain directories and SQLite Archives, and writers
// producing the same containers.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
)

var (
	ErrNotFound    = errors.New("archive: entry not found")
	ErrInvalidName = errors.New("archive: invalid entry name")
)

// Entry describes a single archive member. Directory markers have IsFile unset.
type Entry struct {
	Name   string
	IsFile bool
}

// Source defines an interface for reading entries from an archive.
type Source interface {
	// Len returns the number of entries, directory markers included.
	Len() int

	// Entry returns the i-th entry in archive order.
	Entry(i int) (Entry, error)

	// Open opens the named file entry for reading. Names match exactly.
	// It returns an error wrapping ErrNotFound if the entry does not exist.
	Open(name string) (io.ReadCloser, error)
}

// Writer defines an interface for writing entries to an archive.
type Writer interface {
	// WriteEntry writes a single entry. Data is ignored for directory markers.
	WriteEntry(entry Entry, data []byte) error

	// Finalize completes the writing process: flushes buffers, writes indices.
	// It must be called before closing the Writer.
	Finalize() error
}

// ReadFile opens the named entry, reads it fully and releases it.
func ReadFile(src Source, name string) (data []byte, err error) {
	rc, err := src.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	data, err = io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("archive: read %q: %w", name, err)
	}
	return data, nil
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

// validName reports whether name can be stored under a directory root.
// Directory markers carry a trailing slash.
func validName(name string) bool {
	return fs.ValidPath(strings.TrimSuffix(name, "/"))
}
