package atlas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/invopop/yaml"
)

var ErrPersistence = errors.New("atlas: persistence failed")

// Format is the encoding of a persisted atlas. All formats share the same
// field-labeled schema.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatCBOR
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// FormatFromPath deduces the format from the file extension, defaulting to JSON.
func FormatFromPath(filePath string) Format {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".cbor":
		return FormatCBOR
	default:
		return FormatJSON
	}
}

// cborEncMode uses core deterministic encoding: the same atlas always
// produces identical bytes.
var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("atlas: CBOR encoder initialization failed: " + err.Error())
	}
}

// record mirrors Atlas with pointer fields so that missing fields can be told
// apart from zero values on load.
type record struct {
	PackName   string          `json:"pack_name,omitempty"`
	SideLength *uint32         `json:"side_length"`
	Squares    *[]squareRecord `json:"squares"`
}

type squareRecord struct {
	Name *string `json:"name"`
	X    *uint32 `json:"x"`
	Y    *uint32 `json:"y"`
}

// Save writes the atlas to w.
func Save(w io.Writer, atlas *Atlas, format Format) error {
	out := *atlas
	if out.Squares == nil {
		out.Squares = []Square{}
	}

	var data []byte
	var err error
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(&out, "", "  ")
		data = append(data, '\n')
	case FormatYAML:
		data, err = yaml.Marshal(&out)
	case FormatCBOR:
		data, err = cborEncMode.Marshal(&out)
	default:
		err = fmt.Errorf("unknown format %v", format)
	}
	if err != nil {
		return fmt.Errorf("%w: encode %v: %w", ErrPersistence, format, err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: write: %w", ErrPersistence, err)
	}
	return nil
}

// Load reads an atlas from r. Any missing required field, malformed value or
// invalid placement fails the whole load.
func Load(r io.Reader, format Format) (*Atlas, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", ErrPersistence, err)
	}

	var rec record
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &rec)
	case FormatYAML:
		err = yaml.Unmarshal(data, &rec)
	case FormatCBOR:
		err = cbor.Unmarshal(data, &rec)
	default:
		err = fmt.Errorf("unknown format %v", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %v: %w", ErrPersistence, format, err)
	}

	atlas, err := rec.atlas()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := atlas.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return atlas, nil
}

func (rec *record) atlas() (*Atlas, error) {
	if rec.SideLength == nil {
		return nil, errors.New("missing field \"side_length\"")
	}
	if rec.Squares == nil {
		return nil, errors.New("missing field \"squares\"")
	}

	squares := make([]Square, 0, len(*rec.Squares))
	for i, sq := range *rec.Squares {
		switch {
		case sq.Name == nil:
			return nil, fmt.Errorf("square %d: missing field \"name\"", i)
		case sq.X == nil:
			return nil, fmt.Errorf("square %d: missing field \"x\"", i)
		case sq.Y == nil:
			return nil, fmt.Errorf("square %d: missing field \"y\"", i)
		}
		squares = append(squares, Square{Name: *sq.Name, X: *sq.X, Y: *sq.Y})
	}

	return &Atlas{
		PackName:   rec.PackName,
		SideLength: *rec.SideLength,
		Squares:    squares,
	}, nil
}

// SaveFile writes the atlas to filePath in the format matching its extension.
func SaveFile(filePath string, atlas *Atlas) (err error) {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("%w: %w", ErrPersistence, cerr)
		}
	}()

	return Save(file, atlas, FormatFromPath(filePath))
}

// LoadFile reads an atlas from filePath in the format matching its extension.
func LoadFile(filePath string) (*Atlas, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	defer file.Close()

	return Load(file, FormatFromPath(filePath))
}
