package geometry

import (
	"errors"
	"fmt"
)

// Errors returned by geometry functions.
var (
	ErrInvalidConfig = errors.New("geometry: invalid configuration")
	ErrOutOfRange    = errors.New("geometry: index out of range")
)

// GridPosition is one cell of the measurement grid.
type GridPosition struct {
	Index int   // 0-based row-major grid index
	Row   int   // y direction
	Col   int   // x direction
	Point Point // cell center
}

// GenerateGrid enumerates a rows x cols grid in row-major order.
// Cell (row, col) sits at origin + (col*spacing, row*spacing, 0).
// Non-positive dimensions yield an empty grid.
func GenerateGrid(rows, cols int, spacing float64, origin Point) []GridPosition {
	if rows <= 0 || cols <= 0 {
		return nil
	}

	out := make([]GridPosition, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, GridPosition{
				Index: r*cols + c,
				Row:   r,
				Col:   c,
				Point: Point{
					origin[0] + float64(c)*spacing,
					origin[1] + float64(r)*spacing,
					origin[2],
				},
			})
		}
	}

	return out
}

// GridIndexToFileID maps a 0-based row-major grid index to the 1-based
// column-major id used in recorded file names.
func GridIndexToFileID(idx, rows, cols int) (int, error) {
	if rows <= 0 || cols <= 0 {
		return 0, fmt.Errorf("%w: grid %dx%d", ErrInvalidConfig, rows, cols)
	}
	if idx < 0 || idx >= rows*cols {
		return 0, fmt.Errorf("%w: grid index %d not in [0,%d)", ErrOutOfRange, idx, rows*cols)
	}

	row := idx / cols
	col := idx % cols
	return col*rows + row + 1, nil
}

// FileIDToGridIndex is the inverse of [GridIndexToFileID].
func FileIDToGridIndex(id, rows, cols int) (int, error) {
	if rows <= 0 || cols <= 0 {
		return 0, fmt.Errorf("%w: grid %dx%d", ErrInvalidConfig, rows, cols)
	}
	if id < 1 || id > rows*cols {
		return 0, fmt.Errorf("%w: file id %d not in [1,%d]", ErrOutOfRange, id, rows*cols)
	}

	row := (id - 1) % rows
	col := (id - 1) / rows
	return row*cols + col, nil
}
