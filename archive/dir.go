package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dir implements Source for an unpacked archive stored as a directory tree.
// Entry names are slash-separated paths relative to the root; directory
// markers end with "/".
type Dir struct {
	fsys    fs.FS
	entries []Entry
}

// OpenDir lists every file and directory below root in lexical order.
func OpenDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("archive: %s is not a directory", root)
	}

	fsys := os.DirFS(root)
	entries := make([]Entry, 0)
	err = fs.WalkDir(fsys, ".", func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if filePath == "." {
			return nil
		}
		if d.IsDir() {
			entries = append(entries, Entry{Name: filePath + "/"})
			return nil
		}
		if d.Type().IsRegular() {
			entries = append(entries, Entry{Name: filePath, IsFile: true})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Dir{fsys: fsys, entries: entries}, nil
}

func (d *Dir) Len() int {
	return len(d.entries)
}

func (d *Dir) Entry(i int) (Entry, error) {
	if i < 0 || i >= len(d.entries) {
		return Entry{}, fmt.Errorf("archive: entry index %d out of range [0, %d)", i, len(d.entries))
	}
	return d.entries[i], nil
}

func (d *Dir) Open(name string) (io.ReadCloser, error) {
	if !fs.ValidPath(name) || strings.HasSuffix(name, "/") {
		return nil, notFound(name)
	}
	info, err := fs.Stat(d.fsys, name)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.Mode().IsRegular()) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, err
	}
	return d.fsys.Open(name)
}

// DirWriter implements Writer by storing entries as files below a root directory.
type DirWriter struct {
	root string
}

// NewDirWriter creates root if needed and returns a writer into it.
func NewDirWriter(root string) (*DirWriter, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &DirWriter{root}, nil
}

func (w *DirWriter) WriteEntry(entry Entry, data []byte) error {
	if !validName(entry.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, entry.Name)
	}
	filePath := filepath.Join(w.root, filepath.FromSlash(strings.TrimSuffix(entry.Name, "/")))

	if !entry.IsFile {
		return os.MkdirAll(filePath, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

func (w *DirWriter) Finalize() error {
	return nil
}
