package geometry

import (
	"fmt"
	"math"
)

// Config describes the grid, speaker selection and array shape.
type Config struct {
	Rows       int     // cells along y
	Cols       int     // cells along x
	Spacing    float64 // metres between neighbouring cells
	Origin     Point   // center of cell (0, 0)
	Radius     float64 // circular array radius in metres
	Channels   int     // microphones per array
	StartPhase float64 // angle of channel 0 in radians
	Speakers   SpeakerPolicy
}

// DefaultConfig returns the layout of the reference room: a 6x4 grid with
// 1 m spacing starting at (1.0, 1.5) and 1.5 m above the floor, 8-channel
// arrays of radius 36.5 mm with channel 0 pointing to +y, and speakers at the
// corners and the central 2x2 block.
func DefaultConfig() Config {
	return Config{
		Rows:       6,
		Cols:       4,
		Spacing:    1.0,
		Origin:     Point{1.0, 1.5, 1.5},
		Radius:     0.0365,
		Channels:   8,
		StartPhase: math.Pi / 2,
		Speakers:   CornersAndCenter{},
	}
}

// Validate checks the configuration. All failures wrap [ErrInvalidConfig].
func (c Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("%w: grid must be non-empty: %dx%d", ErrInvalidConfig, c.Rows, c.Cols)
	}
	if !(c.Spacing > 0) || math.IsInf(c.Spacing, 0) {
		return fmt.Errorf("%w: grid spacing must be > 0: %v", ErrInvalidConfig, c.Spacing)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("%w: channel count must be > 0: %d", ErrInvalidConfig, c.Channels)
	}
	if !(c.Radius > 0) || math.IsInf(c.Radius, 0) {
		return fmt.Errorf("%w: array radius must be > 0: %v", ErrInvalidConfig, c.Radius)
	}
	if c.Rows*c.Cols < 2 {
		return fmt.Errorf("%w: grid needs at least two cells", ErrInvalidConfig)
	}
	return nil
}
