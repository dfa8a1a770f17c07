package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zip"
)

// Zip implements Source for zip files such as resource packs.
type Zip struct {
	reader *zip.Reader
	closer io.Closer
	byName map[string]*zip.File
}

// OpenZip opens the zip file at filePath.
//
// The returned Zip must be closed after use to release the file.
func OpenZip(filePath string) (*Zip, error) {
	rc, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	return newZip(&rc.Reader, rc), nil
}

// NewZip reads a zip archive of the given size from r.
func NewZip(r io.ReaderAt, size int64) (*Zip, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return newZip(zr, nil), nil
}

func newZip(zr *zip.Reader, closer io.Closer) *Zip {
	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if _, exists := byName[f.Name]; !exists {
			byName[f.Name] = f
		}
	}
	return &Zip{reader: zr, closer: closer, byName: byName}
}

func (z *Zip) Close() error {
	if z.closer == nil {
		return nil
	}
	return z.closer.Close()
}

func (z *Zip) Len() int {
	return len(z.reader.File)
}

func (z *Zip) Entry(i int) (Entry, error) {
	if i < 0 || i >= len(z.reader.File) {
		return Entry{}, fmt.Errorf("archive: entry index %d out of range [0, %d)", i, len(z.reader.File))
	}
	f := z.reader.File[i]
	return Entry{Name: f.Name, IsFile: !f.FileInfo().IsDir()}, nil
}

func (z *Zip) Open(name string) (io.ReadCloser, error) {
	f, found := z.byName[name]
	if !found || f.FileInfo().IsDir() {
		return nil, notFound(name)
	}
	return f.Open()
}

// zipEpoch is stored as the modification time of every written entry, keeping
// output byte-identical across runs.
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// ZipWriter implements Writer for zip files.
type ZipWriter struct {
	file   *os.File
	writer *zip.Writer
}

// NewZipWriter creates a zip file at filePath.
func NewZipWriter(filePath string) (*ZipWriter, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, err
	}
	return &ZipWriter{file: file, writer: zip.NewWriter(file)}, nil
}

func (w *ZipWriter) WriteEntry(entry Entry, data []byte) error {
	if w.writer == nil {
		return errors.New("archive: write after finalize")
	}

	header := &zip.FileHeader{
		Name:     entry.Name,
		Method:   zip.Deflate,
		Modified: zipEpoch,
	}
	if !entry.IsFile {
		header.Name = dirName(entry.Name)
		header.Method = zip.Store
		data = nil
	}

	fw, err := w.writer.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("archive: create %q: %w", entry.Name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("archive: write %q: %w", entry.Name, err)
	}
	return nil
}

func (w *ZipWriter) Finalize() error {
	if w.writer == nil {
		panic("archive: finalize called twice")
	}
	err := w.writer.Close()
	w.writer = nil
	if err != nil {
		return err
	}

	err = w.file.Close()
	w.file = nil
	return err
}

func (w *ZipWriter) Close() error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

func dirName(name string) string {
	if len(name) > 0 && name[len(name)-1] != '/' {
		return name + "/"
	}
	return name
}
