// Package tile provides the in-memory RGB raster shared by the codec, the atlas
// compiler and the decomposer.
package tile

import "fmt"

const (
	// Edge is the width and height of a single tile in pixels.
	Edge = 16

	// Channels is the number of bytes per pixel (8-bit RGB).
	Channels = 3
)

// Image is an owned row-major RGB buffer. Height is derived from the buffer
// length, so width and data can never disagree.
type Image struct {
	data  []byte
	width int
}

// New returns a zero-filled image of the given size.
func New(width, height int) *Image {
	return &Image{
		data:  make([]byte, width*height*Channels),
		width: width,
	}
}

// FromRGB wraps pix as an image of the given width. The buffer is not copied.
func FromRGB(width int, pix []byte) (*Image, error) {
	if width <= 0 {
		if len(pix) == 0 {
			return &Image{data: pix}, nil
		}
		return nil, fmt.Errorf("tile: invalid width %d for %d bytes", width, len(pix))
	}
	if len(pix)%(width*Channels) != 0 {
		return nil, fmt.Errorf("tile: %d bytes is not a whole number of %d-pixel rows", len(pix), width)
	}
	return &Image{data: pix, width: width}, nil
}

// Dimensions returns the width and height in pixels.
func (m *Image) Dimensions() (int, int) {
	if m.width == 0 {
		return 0, 0
	}
	return m.width, len(m.data) / m.RowStride()
}

// RowStride returns the row width in bytes.
func (m *Image) RowStride() int {
	return m.width * Channels
}

// Pix returns the underlying pixel buffer.
func (m *Image) Pix() []byte {
	return m.data
}

// Blit copies src into m with its top-left corner at pixel (x, y).
// Pixels are overwritten, never blended. Blit panics if src does not fit.
func (m *Image) Blit(x, y int, src *Image) {
	width, height := m.Dimensions()
	if x < 0 || y < 0 || x >= width || y >= height {
		panic("tile: attempt to blit outside image boundaries")
	}
	srcWidth, srcHeight := src.Dimensions()
	if x+srcWidth > width || y+srcHeight > height {
		panic(fmt.Sprintf("tile: %dx%d image does not fit at (%d, %d) in %dx%d image",
			srcWidth, srcHeight, x, y, width, height))
	}

	stride := m.RowStride()
	srcStride := src.RowStride()
	for row := range srcHeight {
		off := stride*(y+row) + x*Channels
		copy(m.data[off:off+srcStride], src.data[row*srcStride:(row+1)*srcStride])
	}
}

// Crop returns a copy of the w×h region with its top-left corner at (x, y).
func (m *Image) Crop(x, y, w, h int) *Image {
	width, height := m.Dimensions()
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > width || y+h > height {
		panic(fmt.Sprintf("tile: crop %dx%d at (%d, %d) outside %dx%d image", w, h, x, y, width, height))
	}

	out := New(w, h)
	stride := m.RowStride()
	outStride := out.RowStride()
	for row := range h {
		off := stride*(y+row) + x*Channels
		copy(out.data[row*outStride:(row+1)*outStride], m.data[off:off+outStride])
	}
	return out
}
