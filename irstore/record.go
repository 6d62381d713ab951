package irstore

import (
	"fmt"

	"github.com/cwbudde/algo-doa/geometry"
)

// ImpulseResponse is one channel of one (transmitter, receiver array) pair.
type ImpulseResponse struct {
	Samples     []float64
	SampleRate  int
	WindowStart int // first sample of the source recording; 0 for simulated data
	Tx          geometry.Point
	Rx          geometry.Point
	Channel     int
}

// PositionMode selects the receiver position metadata reported for the
// channels of an array. The zero value is invalid; callers must choose.
type PositionMode int

const (
	// PositionCentered reports the array center for every channel.
	PositionCentered PositionMode = iota + 1
	// PositionExact reports each channel's own coordinate.
	PositionExact
)

// String returns the configuration name of m.
func (m PositionMode) String() string {
	switch m {
	case PositionCentered:
		return "centered"
	case PositionExact:
		return "exact"
	default:
		return fmt.Sprintf("PositionMode(%d)", int(m))
	}
}

// Valid reports whether m is one of the defined modes.
func (m PositionMode) Valid() bool {
	return m == PositionCentered || m == PositionExact
}

// ParsePositionMode resolves "centered" or "exact".
func ParsePositionMode(s string) (PositionMode, error) {
	switch s {
	case "centered":
		return PositionCentered, nil
	case "exact":
		return PositionExact, nil
	default:
		return 0, fmt.Errorf("%w: position mode %q (valid: centered, exact)", ErrInvalidConfig, s)
	}
}

// ArrayRecord collects the channels of one receiver array. Absent channels
// are nil.
type ArrayRecord struct {
	Key      PairKey
	Channels []*ImpulseResponse
}

// NewArrayRecord returns an empty record with room for channels channels.
func NewArrayRecord(key PairKey, channels int) *ArrayRecord {
	return &ArrayRecord{Key: key, Channels: make([]*ImpulseResponse, channels)}
}

// Set stores ir at its channel index.
func (r *ArrayRecord) Set(ir ImpulseResponse) error {
	if ir.Channel < 0 || ir.Channel >= len(r.Channels) {
		return fmt.Errorf("irstore: %s: channel %d not in [0,%d)", r.Key, ir.Channel, len(r.Channels))
	}
	r.Channels[ir.Channel] = &ir
	return nil
}

// Missing returns the indices of absent channels in ascending order.
func (r *ArrayRecord) Missing() []int {
	var out []int
	for ch, ir := range r.Channels {
		if ir == nil {
			out = append(out, ch)
		}
	}
	return out
}

// Present returns the number of channels held.
func (r *ArrayRecord) Present() int {
	return len(r.Channels) - len(r.Missing())
}

// Complete reports whether every channel is present.
func (r *ArrayRecord) Complete() bool {
	return len(r.Channels) > 0 && len(r.Missing()) == 0
}

// Check returns an [*IncompleteArrayError] unless the record is complete.
func (r *ArrayRecord) Check() error {
	if r.Complete() {
		return nil
	}
	return &IncompleteArrayError{Key: r.Key, Missing: r.Missing(), Want: len(r.Channels)}
}

// Center returns the mean receiver position of the present channels.
func (r *ArrayRecord) Center() geometry.Point {
	pts := make([]geometry.Point, 0, len(r.Channels))
	for _, ir := range r.Channels {
		if ir != nil {
			pts = append(pts, ir.Rx)
		}
	}
	return geometry.Mean(pts)
}

// Transmitter returns the source position of the first present channel.
func (r *ArrayRecord) Transmitter() geometry.Point {
	for _, ir := range r.Channels {
		if ir != nil {
			return ir.Tx
		}
	}
	return geometry.Point{}
}

// SampleRate returns the sample rate of the first present channel.
func (r *ArrayRecord) SampleRate() int {
	for _, ir := range r.Channels {
		if ir != nil {
			return ir.SampleRate
		}
	}
	return 0
}

// Positions returns the receiver position reported for each channel under
// mode. Absent channels report the array center.
func (r *ArrayRecord) Positions(mode PositionMode) ([]geometry.Point, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, mode)
	}
	center := r.Center()
	out := make([]geometry.Point, len(r.Channels))
	for ch, ir := range r.Channels {
		if mode == PositionExact && ir != nil {
			out[ch] = ir.Rx
		} else {
			out[ch] = center
		}
	}
	return out, nil
}
