package atlas

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/google/hilbert"
)

// Layout selects how names are mapped onto grid cells.
type Layout int

const (
	// LayoutRowMajor fills rows top to bottom, each left to right, in name order.
	LayoutRowMajor Layout = iota

	// LayoutHilbert walks the grid along a Hilbert curve, so names that are
	// adjacent in the input end up in neighbouring cells.
	LayoutHilbert
)

func (l Layout) String() string {
	switch l {
	case LayoutRowMajor:
		return "rowmajor"
	case LayoutHilbert:
		return "hilbert"
	default:
		return fmt.Sprintf("unknown(%d)", int(l))
	}
}

func ParseLayout(name string) (Layout, error) {
	switch name {
	case "rowmajor", "":
		return LayoutRowMajor, nil
	case "hilbert":
		return LayoutHilbert, nil
	default:
		return 0, fmt.Errorf("atlas: unknown layout %q", name)
	}
}

// SideLength returns ceil(sqrt(n)), the smallest grid that holds n tiles.
func SideLength(n int) uint32 {
	side := uint32(math.Sqrt(float64(n)))
	for uint64(side)*uint64(side) < uint64(n) {
		side++
	}
	for side > 0 && uint64(side-1)*uint64(side-1) >= uint64(n) {
		side--
	}
	return side
}

// AssignGrid places names row by row. Names are consumed front to back, so
// the first name lands at (0, 0). Cells past the last name are left empty.
func AssignGrid(names []string) *Atlas {
	side := SideLength(len(names))
	squares := make([]Square, 0, len(names))

	queue := names
fill:
	for y := range side {
		for x := range side {
			if len(queue) == 0 {
				break fill
			}
			squares = append(squares, Square{Name: queue[0], X: x, Y: y})
			queue = queue[1:]
		}
	}

	return &Atlas{SideLength: side, Squares: squares}
}

// AssignHilbert places names along a Hilbert curve covering the smallest
// power-of-two square that contains the grid, skipping cells outside it.
// Squares are returned in row-major order like AssignGrid.
func AssignHilbert(names []string) (*Atlas, error) {
	side := SideLength(len(names))
	squares := make([]Square, 0, len(names))
	if side == 0 {
		return &Atlas{Squares: squares}, nil
	}

	order := 1
	for order < int(side) {
		order <<= 1
	}
	h, err := hilbert.NewHilbert(order)
	if err != nil {
		return nil, err
	}

	queue := names
	for t := 0; t < order*order && len(queue) > 0; t++ {
		x, y, err := h.Map(t)
		if err != nil {
			return nil, err
		}
		if x >= int(side) || y >= int(side) {
			continue
		}
		squares = append(squares, Square{Name: queue[0], X: uint32(x), Y: uint32(y)})
		queue = queue[1:]
	}

	slices.SortFunc(squares, func(a, b Square) int {
		return cmp.Or(cmp.Compare(a.Y, b.Y), cmp.Compare(a.X, b.X))
	})
	return &Atlas{SideLength: side, Squares: squares}, nil
}

func assign(names []string, layout Layout) (*Atlas, error) {
	switch layout {
	case LayoutRowMajor:
		return AssignGrid(names), nil
	case LayoutHilbert:
		return AssignHilbert(names)
	default:
		return nil, fmt.Errorf("atlas: unknown layout %v", layout)
	}
}
