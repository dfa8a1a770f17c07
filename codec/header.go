package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	colorTypeRGB  = 2
	colorTypeRGBA = 6
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// signature, IHDR length and type, and the 13-byte IHDR payload
const headerLength = 8 + 8 + 13

// Header is the part of the PNG IHDR chunk relevant to the tile contract.
// image/png reports gray+alpha and RGBA through the same color model, so the
// layout is taken from the raw chunk instead.
type Header struct {
	Width     uint32
	Height    uint32
	BitDepth  uint8
	ColorType uint8
}

func (h Header) supported() bool {
	return h.BitDepth == 8 && (h.ColorType == colorTypeRGB || h.ColorType == colorTypeRGBA)
}

// readHeader parses the IHDR chunk and returns a reader that replays the
// consumed bytes ahead of the rest of r.
func readHeader(r io.Reader) (Header, io.Reader, error) {
	buf := make([]byte, headerLength)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if !bytes.Equal(buf[:8], pngSignature) || string(buf[12:16]) != "IHDR" {
		return Header{}, nil, fmt.Errorf("%w: not a PNG file", ErrDecode)
	}

	hdr := Header{
		Width:     binary.BigEndian.Uint32(buf[16:20]),
		Height:    binary.BigEndian.Uint32(buf[20:24]),
		BitDepth:  buf[24],
		ColorType: buf[25],
	}
	return hdr, io.MultiReader(bytes.NewReader(buf), r), nil
}
