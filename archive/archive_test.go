package archive_test

import (
	"bytes"
	"errors"
	"io"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/eak1mov/go-megatex/archive"
	"github.com/eak1mov/go-megatex/internal"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type entryData struct {
	Entry archive.Entry
	Data  []byte
}

func testEntries() []entryData {
	noise := make([]byte, 4096)
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range noise {
		noise[i] = byte(rng.Uint32())
	}

	return []entryData{
		{Entry: archive.Entry{Name: "pack.mcmeta", IsFile: true}, Data: []byte(`{"pack":{"pack_format":15}}`)},
		{Entry: archive.Entry{Name: "assets/"}},
		{Entry: archive.Entry{Name: "assets/minecraft/"}},
		{Entry: archive.Entry{Name: "assets/minecraft/zeros.bin", IsFile: true}, Data: make([]byte, 4096)},
		{Entry: archive.Entry{Name: "assets/minecraft/noise.bin", IsFile: true}, Data: noise},
		{Entry: archive.Entry{Name: "assets/minecraft/empty.txt", IsFile: true}, Data: []byte{}},
	}
}

type writerCloser interface {
	archive.Writer
	io.Closer
}

type sourceCloser interface {
	archive.Source
	io.Closer
}

var formats = []struct {
	Name    string
	Ordered bool
	Create  func(path string) (writerCloser, error)
	Open    func(path string) (sourceCloser, error)
}{
	{
		Name:    "zip",
		Ordered: true,
		Create:  func(path string) (writerCloser, error) { return archive.NewZipWriter(path) },
		Open:    func(path string) (sourceCloser, error) { return archive.OpenZip(path) },
	},
	{
		Name:    "sqlar",
		Ordered: true,
		Create:  func(path string) (writerCloser, error) { return archive.NewSQLiteWriter(path) },
		Open:    func(path string) (sourceCloser, error) { return archive.OpenSQLite(path) },
	},
	{
		Name: "dir",
		Create: func(path string) (writerCloser, error) {
			w, err := archive.NewDirWriter(path)
			return dirWriter{w}, err
		},
		Open: func(path string) (sourceCloser, error) {
			d, err := archive.OpenDir(path)
			return dirSource{d}, err
		},
	},
}

type dirWriter struct{ *archive.DirWriter }

func (dirWriter) Close() error { return nil }

type dirSource struct{ *archive.Dir }

func (dirSource) Close() error { return nil }

func TestWriterReader(t *testing.T) {
	for _, tc := range formats {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			entries := testEntries()
			filePath := filepath.Join(t.TempDir(), "pack."+tc.Name)

			writer, err := tc.Create(filePath)
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			defer writer.Close()

			for _, e := range entries {
				if err := writer.WriteEntry(e.Entry, e.Data); err != nil {
					t.Fatalf("WriteEntry(%v) failed: %v", e.Entry.Name, err)
				}
			}
			if err := writer.Finalize(); err != nil {
				t.Fatalf("Finalize failed: %v", err)
			}

			reader, err := tc.Open(filePath)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer reader.Close()

			gotEntries := make([]archive.Entry, 0)
			for _, entry := range archive.IterEntries(reader) {
				gotEntries = append(gotEntries, entry)
			}
			wantEntries := make([]archive.Entry, 0)
			for _, e := range entries {
				wantEntries = append(wantEntries, e.Entry)
			}
			if !tc.Ordered {
				less := func(a, b archive.Entry) int { return strings.Compare(a.Name, b.Name) }
				slices.SortFunc(gotEntries, less)
				slices.SortFunc(wantEntries, less)
			}
			if diff := cmp.Diff(wantEntries, gotEntries); diff != "" {
				t.Errorf("entries mismatch (-want+got):\n%v", diff)
			}

			for _, e := range entries {
				if !e.Entry.IsFile {
					continue
				}
				data, err := archive.ReadFile(reader, e.Entry.Name)
				if err != nil {
					t.Errorf("ReadFile(%v) failed: %v", e.Entry.Name, err)
					continue
				}
				if !bytes.Equal(data, e.Data) {
					t.Errorf("ReadFile(%v) data mismatch: got %v bytes, want %v bytes", e.Entry.Name, len(data), len(e.Data))
				}
			}

			for _, name := range []string{"missing.png", "assets/", "assets", "Pack.mcmeta"} {
				_, err := reader.Open(name)
				require.Truef(t, errors.Is(err, archive.ErrNotFound), "Open(%v): %v", name, err)
			}

			_, err = reader.Entry(reader.Len())
			require.Error(t, err)
		})
	}
}

func TestZipDuplicateNames(t *testing.T) {
	src := internal.Zip(t,
		internal.File{Name: "a.txt", Data: []byte("first")},
		internal.File{Name: "a.txt", Data: []byte("second")},
	)

	if got, want := src.Len(), 2; got != want {
		t.Errorf("Len() = %v, want = %v", got, want)
	}
	data, err := archive.ReadFile(src, "a.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if got, want := string(data), "first"; got != want {
		t.Errorf("ReadFile() = %q, want = %q", got, want)
	}
}

func TestZipNotAnArchive(t *testing.T) {
	data := []byte("definitely not a zip file")
	if _, err := archive.NewZip(bytes.NewReader(data), int64(len(data))); err == nil {
		t.Errorf("NewZip succeeded, want error")
	}
	if _, err := archive.OpenZip(filepath.Join(t.TempDir(), "missing.zip")); err == nil {
		t.Errorf("OpenZip(missing) succeeded, want error")
	}
}

func TestDirWriterInvalidName(t *testing.T) {
	writer, err := archive.NewDirWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirWriter failed: %v", err)
	}
	for _, name := range []string{"../escape.png", "/abs.png", "a//b.png", ""} {
		err := writer.WriteEntry(archive.Entry{Name: name, IsFile: true}, []byte("x"))
		require.Truef(t, errors.Is(err, archive.ErrInvalidName), "WriteEntry(%q): %v", name, err)
	}
}

func TestOpenDirNotADirectory(t *testing.T) {
	if _, err := archive.OpenDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("OpenDir(missing) succeeded, want error")
	}
}

func TestIterEntriesBreak(t *testing.T) {
	src := internal.Zip(t,
		internal.File{Name: "a"},
		internal.File{Name: "b"},
		internal.File{Name: "c"},
	)

	visited := make(map[int]archive.Entry)
	for i, entry := range archive.IterEntries(src) {
		visited[i] = entry
		if i == 1 {
			break
		}
	}
	want := map[int]archive.Entry{
		0: {Name: "a", IsFile: true},
		1: {Name: "b", IsFile: true},
	}
	if diff := cmp.Diff(want, visited); diff != "" {
		t.Errorf("IterEntries mismatch (-want+got):\n%v", diff)
	}
}

func TestVisitEntriesError(t *testing.T) {
	src := internal.Zip(t, internal.File{Name: "a"}, internal.File{Name: "b"})

	stop := errors.New("stop")
	calls := 0
	err := archive.VisitEntries(src, func(int, archive.Entry) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, calls)
}
