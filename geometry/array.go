package geometry

import (
	"fmt"
	"math"
)

// ChannelAngle returns the angle in radians of channel k on a circular array.
func ChannelAngle(k, channels int, startPhase float64) float64 {
	return startPhase + float64(k)*(2*math.Pi/float64(channels))
}

// CircularOffsets returns the channel offsets of a circular array relative
// to its center, counter-clockwise from startPhase. All offsets lie in the
// horizontal plane.
func CircularOffsets(radius float64, channels int, startPhase float64) ([]Point, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count must be > 0: %d", ErrInvalidConfig, channels)
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: array radius must be > 0: %v", ErrInvalidConfig, radius)
	}

	out := make([]Point, channels)
	for k := range out {
		theta := ChannelAngle(k, channels, startPhase)
		out[k] = Point{radius * math.Cos(theta), radius * math.Sin(theta), 0}
	}

	return out, nil
}

// CircularArray returns absolute channel positions of a circular array
// centered on center.
func CircularArray(center Point, radius float64, channels int, startPhase float64) ([]Point, error) {
	offsets, err := CircularOffsets(radius, channels, startPhase)
	if err != nil {
		return nil, err
	}

	for i := range offsets {
		offsets[i] = center.Add(offsets[i])
	}

	return offsets, nil
}
