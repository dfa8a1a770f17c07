package megatex

import (
	"bytes"
	"fmt"

	"github.com/eak1mov/go-megatex/archive"
	"github.com/eak1mov/go-megatex/atlas"
	"github.com/eak1mov/go-megatex/codec"
	"github.com/eak1mov/go-megatex/tile"
)

// DecomposeStats counts the entries written by Decompose.
type DecomposeStats struct {
	Replaced    int // template entries replaced by megatexture squares
	Copied      int // template entries copied verbatim
	Directories int
	Appended    int // squares missing from the template
}

// Decompose cuts every square of a out of img and writes them to out, using
// template as the layout of the output archive: entries named in the atlas are
// replaced with the encoded squares, all other entries are copied unchanged and
// squares the template lacks are appended in atlas order. template may be nil.
//
// The caller finalizes out.
func Decompose(img *tile.Image, a *atlas.Atlas, template archive.Source, out archive.Writer, opts ...Option) (*DecomposeStats, error) {
	config := newConfig(opts)

	if err := a.Validate(); err != nil {
		return nil, err
	}
	side := tile.Edge * int(a.SideLength)
	if width, height := img.Dimensions(); width != side || height != side {
		return nil, fmt.Errorf("%w: megatexture is %dx%d, atlas needs %dx%d",
			ErrDimensionMismatch, width, height, side, side)
	}

	encodeSquare := func(square atlas.Square) ([]byte, error) {
		var buffer bytes.Buffer
		crop := img.Crop(int(square.X)*tile.Edge, int(square.Y)*tile.Edge, tile.Edge, tile.Edge)
		if err := codec.Encode(&buffer, crop); err != nil {
			return nil, fmt.Errorf("megatex: encode %q: %w", square.Name, err)
		}
		return buffer.Bytes(), nil
	}

	stats := &DecomposeStats{}
	written := make(map[string]struct{})

	if template != nil {
		err := archive.VisitEntries(template, func(_ int, entry archive.Entry) error {
			if _, exists := written[entry.Name]; exists {
				config.Logger.Debug("skipping duplicate template entry", "name", entry.Name)
				return nil
			}
			written[entry.Name] = struct{}{}
			defer config.Progress()

			if !entry.IsFile {
				stats.Directories++
				return out.WriteEntry(entry, nil)
			}

			var data []byte
			var err error
			if square, found := a.Lookup(entry.Name); found {
				data, err = encodeSquare(square)
				stats.Replaced++
			} else {
				data, err = archive.ReadFile(template, entry.Name)
				stats.Copied++
			}
			if err != nil {
				return err
			}
			if err := out.WriteEntry(entry, data); err != nil {
				return fmt.Errorf("megatex: write %q: %w", entry.Name, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	for _, square := range a.Squares {
		if _, exists := written[square.Name]; exists {
			continue
		}
		data, err := encodeSquare(square)
		if err != nil {
			return nil, err
		}
		if err := out.WriteEntry(archive.Entry{Name: square.Name, IsFile: true}, data); err != nil {
			return nil, fmt.Errorf("megatex: write %q: %w", square.Name, err)
		}
		config.Logger.Debug("appended square missing from template", "name", square.Name)
		stats.Appended++
		config.Progress()
	}

	config.Logger.Info("decomposed megatexture",
		"replaced", stats.Replaced, "copied", stats.Copied, "directories", stats.Directories, "appended", stats.Appended)
	return stats, nil
}
