package archive

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	_ "github.com/mattn/go-sqlite3"
)

// Unix st_mode bits as stored in the sqlar mode column.
const (
	modeTypeMask = 0o170000
	modeDir      = 0o040000
	modeSymlink  = 0o120000
	modeRegular  = 0o100000
)

// SQLite implements Source for SQLite Archives ("sqlar" files), where each
// row holds a name, a Unix mode, the original size and a blob that is
// zlib-compressed whenever it is shorter than the original size.
type SQLite struct {
	db      *sql.DB
	stmt    *sql.Stmt
	entries []Entry
}

// OpenSQLite opens the SQLite Archive at filePath read-only.
//
// The returned SQLite must be closed after use to release database resources.
func OpenSQLite(filePath string) (s *SQLite, err error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", filePath))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	entries, err := readEntries(db)
	if err != nil {
		return nil, err
	}

	stmt, err := db.Prepare("SELECT mode, sz, data FROM sqlar WHERE name = ?")
	if err != nil {
		return nil, err
	}

	return &SQLite{db: db, stmt: stmt, entries: entries}, nil
}

func readEntries(db *sql.DB) ([]Entry, error) {
	rows, err := db.Query("SELECT name, mode FROM sqlar ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var name string
		var mode int64
		if err := rows.Scan(&name, &mode); err != nil {
			return nil, err
		}
		switch mode & modeTypeMask {
		case modeDir:
			entries = append(entries, Entry{Name: dirName(name)})
		case modeSymlink:
			entries = append(entries, Entry{Name: name})
		default:
			entries = append(entries, Entry{Name: name, IsFile: true})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *SQLite) Close() error {
	return errors.Join(s.stmt.Close(), s.db.Close())
}

func (s *SQLite) Len() int {
	return len(s.entries)
}

func (s *SQLite) Entry(i int) (Entry, error) {
	if i < 0 || i >= len(s.entries) {
		return Entry{}, fmt.Errorf("archive: entry index %d out of range [0, %d)", i, len(s.entries))
	}
	return s.entries[i], nil
}

func (s *SQLite) Open(name string) (io.ReadCloser, error) {
	var mode, size int64
	var data []byte
	if err := s.stmt.QueryRow(name).Scan(&mode, &size, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(name)
		}
		return nil, err
	}

	typ := mode & modeTypeMask
	if typ == modeDir || typ == modeSymlink {
		return nil, notFound(name)
	}

	if int64(len(data)) == size {
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("archive: inflate %q: %w", name, err)
	}
	defer zr.Close()

	inflated, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("archive: inflate %q: %w", name, err)
	}
	if int64(len(inflated)) != size {
		return nil, fmt.Errorf("archive: inflate %q: got %d bytes, want %d", name, len(inflated), size)
	}
	return io.NopCloser(bytes.NewReader(inflated)), nil
}

// SQLiteWriter implements Writer for SQLite Archives.
type SQLiteWriter struct {
	db   *sql.DB
	tx   *sql.Tx
	stmt *sql.Stmt
}

// NewSQLiteWriter creates a new SQLite Archive at filePath.
// Entries are written in a single transaction committed by Finalize.
func NewSQLiteWriter(filePath string) (w *SQLiteWriter, err error) {
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	_, err = db.Exec(`
		CREATE TABLE sqlar (
			name TEXT PRIMARY KEY,
			mode INT,
			mtime INT,
			sz INT,
			data BLOB
		);
	`)
	if err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}

	stmt, err := tx.Prepare("INSERT INTO sqlar (name, mode, mtime, sz, data) VALUES (?, ?, 0, ?, ?)")
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	return &SQLiteWriter{db: db, tx: tx, stmt: stmt}, nil
}

func (w *SQLiteWriter) WriteEntry(entry Entry, data []byte) error {
	if w.tx == nil {
		return errors.New("archive: write after finalize")
	}

	if !entry.IsFile {
		name := entry.Name
		if len(name) > 0 && name[len(name)-1] == '/' {
			name = name[:len(name)-1]
		}
		_, err := w.stmt.Exec(name, modeDir|0o755, 0, nil)
		return err
	}

	blob, err := deflate(data)
	if err != nil {
		return fmt.Errorf("archive: deflate %q: %w", entry.Name, err)
	}
	_, err = w.stmt.Exec(entry.Name, modeRegular|0o644, len(data), blob)
	return err
}

// deflate returns the zlib form of data, or data itself if compression does
// not make it shorter.
func deflate(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	zw := zlib.NewWriter(&buffer)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if buffer.Len() >= len(data) {
		return data, nil
	}
	return buffer.Bytes(), nil
}

func (w *SQLiteWriter) Finalize() error {
	if w.tx == nil {
		panic("archive: finalize called twice")
	}
	err := errors.Join(w.stmt.Close(), w.tx.Commit())
	w.tx = nil
	return err
}

func (w *SQLiteWriter) Close() error {
	if w.tx != nil {
		w.stmt.Close()
		w.tx.Rollback()
		w.tx = nil
	}
	return w.db.Close()
}
