// Package codec converts between PNG files and tile images.
//
// A tile is accepted only if it is exactly tile.Edge pixels square and stored as
// 8-bit RGB or RGBA. RGBA input is truncated to RGB; alpha is dropped, not blended.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/eak1mov/go-megatex/tile"
	xdraw "golang.org/x/image/draw"
)

var (
	ErrDecode      = errors.New("codec: decode failed")
	ErrUnsupported = fmt.Errorf("%w: unsupported color encoding", ErrDecode)
	ErrEncode      = errors.New("codec: encode failed")
)

// Probe decides whether r holds a valid tile. A well-formed image of the wrong
// size or color encoding yields false with no error; an error is returned only
// if r is not a decodable PNG. Tiles that pass the header check are decoded in
// full, so truncated or corrupt image data is reported as an error.
func Probe(r io.Reader) (bool, error) {
	hdr, r, err := readHeader(r)
	if err != nil {
		return false, err
	}
	if hdr.Width != tile.Edge || hdr.Height != tile.Edge || !hdr.supported() {
		if _, err := png.DecodeConfig(r); err != nil {
			return false, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return false, nil
	}
	if _, err := png.Decode(r); err != nil {
		return false, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return true, nil
}

func ProbeBytes(data []byte) (bool, error) {
	return Probe(bytes.NewReader(data))
}

// Decode fully decodes r into an RGB image. Dimensions are not checked here.
func Decode(r io.Reader) (*tile.Image, error) {
	hdr, r, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if !hdr.supported() {
		return nil, fmt.Errorf("%w (color type %d, bit depth %d)", ErrUnsupported, hdr.ColorType, hdr.BitDepth)
	}

	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	var pix []byte
	var stride int
	switch src := img.(type) {
	case *image.RGBA:
		pix, stride = src.Pix, src.Stride
	case *image.NRGBA:
		pix, stride = src.Pix, src.Stride
	default:
		return nil, fmt.Errorf("%w (%T)", ErrUnsupported, img)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	dst := make([]byte, width*height*tile.Channels)
	for y := range height {
		row := pix[y*stride : y*stride+width*4]
		for x := range width {
			copy(dst[(y*width+x)*tile.Channels:], row[x*4:x*4+tile.Channels])
		}
	}

	out, err := tile.FromRGB(width, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return out, nil
}

func DecodeBytes(data []byte) (*tile.Image, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes img to w as an 8-bit RGB PNG.
func Encode(w io.Writer, img *tile.Image) error {
	width, height := img.Dimensions()
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: empty %dx%d image", ErrEncode, width, height)
	}
	// Opaque *image.RGBA is written as truecolor without alpha.
	if err := png.Encode(w, ToRGBA(img)); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

// EncodePreview writes img scaled to size×size pixels as an RGB PNG.
func EncodePreview(w io.Writer, img *tile.Image, size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: invalid preview size %d", ErrEncode, size)
	}
	width, height := img.Dimensions()
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: empty %dx%d image", ErrEncode, width, height)
	}

	src := ToRGBA(img)
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	if err := png.Encode(w, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

// ToRGBA converts img to an opaque *image.RGBA.
func ToRGBA(img *tile.Image) *image.RGBA {
	width, height := img.Dimensions()
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	src := img.Pix()
	for i := range width * height {
		copy(out.Pix[i*4:], src[i*tile.Channels:(i+1)*tile.Channels])
		out.Pix[i*4+3] = 0xff
	}
	return out
}
