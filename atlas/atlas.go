// Package atlas assigns tiles to grid cells of a megatexture and persists the
// assignment.
package atlas

import (
	"errors"
	"fmt"
)

var ErrInvalidAtlas = errors.New("atlas: invalid atlas")

// Square places one named tile at grid cell (X, Y), in tile units.
type Square struct {
	Name string `json:"name"`
	X    uint32 `json:"x"`
	Y    uint32 `json:"y"`
}

// Atlas is a SideLength×SideLength grid of tiles.
type Atlas struct {
	PackName   string `json:"pack_name,omitempty"` // diagnostics only
	SideLength uint32 `json:"side_length"`

	// Squares in row-major order: top row first, left to right.
	Squares []Square `json:"squares"`
}

// Lookup returns the square holding the named tile.
func (a *Atlas) Lookup(name string) (Square, bool) {
	for _, square := range a.Squares {
		if square.Name == name {
			return square, true
		}
	}
	return Square{}, false
}

// Validate checks that the grid is the smallest square holding every square,
// that every square lies inside it and that no cell or name is used twice.
func (a *Atlas) Validate() error {
	if want := SideLength(len(a.Squares)); a.SideLength != want {
		return fmt.Errorf("%w: side length %d for %d squares, want %d", ErrInvalidAtlas, a.SideLength, len(a.Squares), want)
	}

	cells := make(map[[2]uint32]string, len(a.Squares))
	names := make(map[string]struct{}, len(a.Squares))
	for _, square := range a.Squares {
		if square.X >= a.SideLength || square.Y >= a.SideLength {
			return fmt.Errorf("%w: %q at (%d, %d) outside %dx%d grid", ErrInvalidAtlas, square.Name, square.X, square.Y, a.SideLength, a.SideLength)
		}
		cell := [2]uint32{square.X, square.Y}
		if prev, exists := cells[cell]; exists {
			return fmt.Errorf("%w: %q and %q share cell (%d, %d)", ErrInvalidAtlas, prev, square.Name, square.X, square.Y)
		}
		cells[cell] = square.Name
		if _, exists := names[square.Name]; exists {
			return fmt.Errorf("%w: %q placed twice", ErrInvalidAtlas, square.Name)
		}
		names[square.Name] = struct{}{}
	}
	return nil
}
