package roomsim

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-doa/geometry"
)

// ErrInvalidRoom is returned for unusable room parameters.
var ErrInvalidRoom = errors.New("roomsim: invalid room")

// Default room parameters.
const (
	DefaultAbsorption = 0.0055
	DefaultMaxOrder   = 10
	DefaultSampleRate = 48000
	DefaultSoundSpeed = 343.0
)

// Room describes a shoebox room with its corner at the origin.
type Room struct {
	Dimensions geometry.Point // width (x), depth (y), height (z) in meters
	Absorption float64        // energy absorption coefficient in [0, 1)
	MaxOrder   int            // maximum reflection order
	SampleRate int            // Hz
	SoundSpeed float64        // m/s
}

// DefaultRoom returns the measurement room: 6.110 x 8.807 x 2.7 m,
// absorption 0.0055, 10 reflection orders at 48 kHz.
func DefaultRoom() Room {
	return Room{
		Dimensions: geometry.Point{6.110, 8.807, 2.7},
		Absorption: DefaultAbsorption,
		MaxOrder:   DefaultMaxOrder,
		SampleRate: DefaultSampleRate,
		SoundSpeed: DefaultSoundSpeed,
	}
}

// Validate checks the room parameters.
func (r Room) Validate() error {
	for i, d := range r.Dimensions {
		if !(d > 0) {
			return fmt.Errorf("%w: dimension %d must be positive: %v", ErrInvalidRoom, i, d)
		}
	}
	if r.Absorption < 0 || r.Absorption >= 1 {
		return fmt.Errorf("%w: absorption must be in [0,1): %v", ErrInvalidRoom, r.Absorption)
	}
	if r.MaxOrder < 0 {
		return fmt.Errorf("%w: max order must be >= 0: %d", ErrInvalidRoom, r.MaxOrder)
	}
	if r.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive: %d", ErrInvalidRoom, r.SampleRate)
	}
	if !(r.SoundSpeed > 0) {
		return fmt.Errorf("%w: sound speed must be positive: %v", ErrInvalidRoom, r.SoundSpeed)
	}
	return nil
}

// Contains reports whether p lies strictly inside the room.
func (r Room) Contains(p geometry.Point) bool {
	for i := range p {
		if p[i] <= 0 || p[i] >= r.Dimensions[i] {
			return false
		}
	}
	return true
}
