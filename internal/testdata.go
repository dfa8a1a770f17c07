// Package internal generates in-memory test fixtures: PNG tiles and resource
// pack archives built from them.
package internal

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/eak1mov/go-megatex/archive"
	"github.com/klauspost/compress/zip"
)

// TexturePrefix is where resource packs keep block textures.
const TexturePrefix = "assets/minecraft/textures/block/"

// File is a single archive member. Directory markers end with "/".
type File struct {
	Name string
	Data []byte
}

// Texture returns a block texture file named name with the given content.
func Texture(name string, data []byte) File {
	return File{Name: TexturePrefix + name, Data: data}
}

// RGB returns an opaque w×h image with a pattern derived from seed.
func RGB(w, h int, seed byte) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = seed + byte(i)
		img.Pix[i+1] = seed ^ byte(i>>2)
		img.Pix[i+2] = seed * byte(i>>3)
		img.Pix[i+3] = 0xff
	}
	return img
}

// RGBA returns a w×h image whose alpha varies, so it encodes with an alpha channel.
func RGBA(w, h int, seed byte) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = seed + byte(i)
		img.Pix[i+1] = seed ^ byte(i>>2)
		img.Pix[i+2] = seed * byte(i>>3)
		img.Pix[i+3] = byte(i >> 2)
	}
	return img
}

// Gray returns an 8-bit grayscale image.
func Gray(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	return img
}

// Paletted returns a two-color paletted image.
func Paletted(w, h int) *image.Paletted {
	return image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.Black, color.White})
}

// EncodePNG encodes img with the standard PNG encoder.
func EncodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	return buffer.Bytes()
}

// Tile returns an encoded opaque tile.
func Tile(t testing.TB, seed byte) []byte {
	t.Helper()
	return EncodePNG(t, RGB(16, 16, seed))
}

// ZipBytes builds a zip archive holding files in the given order.
func ZipBytes(t testing.TB, files ...File) []byte {
	t.Helper()

	var buffer bytes.Buffer
	zw := zip.NewWriter(&buffer)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatalf("zip Create(%q) failed: %v", f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			t.Fatalf("zip Write(%q) failed: %v", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close failed: %v", err)
	}
	return buffer.Bytes()
}

// Zip builds an in-memory zip archive source holding files.
func Zip(t testing.TB, files ...File) *archive.Zip {
	t.Helper()

	data := ZipBytes(t, files...)
	src, err := archive.NewZip(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewZip failed: %v", err)
	}
	return src
}
