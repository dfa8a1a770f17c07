package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeduceFormat(t *testing.T) {
	dir := t.TempDir()

	for _, tc := range []struct {
		Format string
		Path   string
		Want   string
	}{
		{Path: "pack.zip", Want: "zip"},
		{Path: "PACK.ZIP", Want: "zip"},
		{Path: "pack.sqlar", Want: "sqlar"},
		{Path: "pack.sqlite", Want: "sqlar"},
		{Path: "pack.db", Want: "sqlar"},
		{Path: dir, Want: "dir"},
		{Path: filepath.Join(dir, "unpacked"), Want: "dir"},
		{Path: "pack.mcpack", Want: "zip"},
		{Format: "sqlar", Path: "pack.zip", Want: "sqlar"},
	} {
		if got := deduceFormat(tc.Format, tc.Path); got != tc.Want {
			t.Errorf("deduceFormat(%q, %q) = %q, want = %q", tc.Format, tc.Path, got, tc.Want)
		}
	}
}

func TestOpenSourceInvalidFormat(t *testing.T) {
	if _, err := openSource("tar", "pack.tar"); err == nil {
		t.Errorf("openSource(tar) succeeded, want error")
	}
	if _, err := createWriter("tar", "pack.tar"); err == nil {
		t.Errorf("createWriter(tar) succeeded, want error")
	}
}

func TestSameFile(t *testing.T) {
	dir := t.TempDir()
	pack := filepath.Join(dir, "pack.zip")
	other := filepath.Join(dir, "other.zip")
	for _, path := range []string{pack, other} {
		if err := os.WriteFile(path, []byte("zip"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	link := filepath.Join(dir, "link.zip")
	if err := os.Symlink(pack, link); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	for _, tc := range []struct {
		A, B string
		Want bool
	}{
		{A: pack, B: pack, Want: true},
		{A: pack, B: dir + "/./pack.zip", Want: true},
		{A: pack, B: link, Want: true},
		{A: pack, B: other, Want: false},
		{A: pack, B: filepath.Join(dir, "missing.zip"), Want: false},
	} {
		if got := sameFile(tc.A, tc.B); got != tc.Want {
			t.Errorf("sameFile(%q, %q) = %v, want = %v", tc.A, tc.B, got, tc.Want)
		}
	}
}
