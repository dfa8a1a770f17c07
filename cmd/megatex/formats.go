package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eak1mov/go-megatex/archive"
)

func deduceFormat(format, filePath string) string {
	if format != "" {
		return format
	}
	lower := strings.ToLower(filePath)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return "zip"
	case strings.HasSuffix(lower, ".sqlar"), strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".db"):
		return "sqlar"
	}
	if info, err := os.Stat(filePath); err == nil && info.IsDir() {
		return "dir"
	}
	if filepath.Ext(filePath) == "" {
		return "dir"
	}
	return "zip"
}

func openSource(format, filePath string) (archive.Source, error) {
	switch deduceFormat(format, filePath) {
	case "zip":
		return archive.OpenZip(filePath)
	case "sqlar":
		return archive.OpenSQLite(filePath)
	case "dir":
		return archive.OpenDir(filePath)
	default:
		return nil, fmt.Errorf("invalid input format: %q", format)
	}
}

func createWriter(format, filePath string) (archive.Writer, error) {
	switch deduceFormat(format, filePath) {
	case "zip":
		return archive.NewZipWriter(filePath)
	case "sqlar":
		return archive.NewSQLiteWriter(filePath)
	case "dir":
		return archive.NewDirWriter(filePath)
	default:
		return nil, fmt.Errorf("invalid output format: %q", format)
	}
}

// sameFile reports whether both paths name the same existing file or directory.
func sameFile(a, b string) bool {
	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

// openSources opens every path in order. On failure the archives opened so far
// are closed.
func openSources(format string, filePaths []string) ([]archive.Source, error) {
	srcs := make([]archive.Source, 0, len(filePaths))
	for _, filePath := range filePaths {
		src, err := openSource(format, filePath)
		if err != nil {
			closeAll(srcs)
			return nil, fmt.Errorf("open %s: %w", filePath, err)
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

func closeAll[T any](items []T) error {
	var errs []error
	for _, item := range items {
		if closer, ok := any(item).(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
