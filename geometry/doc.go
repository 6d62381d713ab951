// Package geometry models the transmitter/receiver layout of a grid-based
// room acoustics measurement.
//
// A rectangular grid of Rows x Cols cells is laid out on the floor plane with
// a fixed spacing. A subset of cells (the speaker slots) holds transmitters;
// for a given transmitter every other cell holds a circular microphone array.
// Channel k of an array sits at angle StartPhase + k*2π/Channels on a circle
// of fixed radius, counter-clockwise.
//
// Three numbering schemes meet here and must agree exactly:
//
//   - grid index: 0-based, row-major (index = row*Cols + col)
//   - file id: 1-based, column-major, used by recorded file names
//     (file_id = col*Rows + row + 1)
//   - transmitter/receiver sequence index: position of a speaker slot in the
//     selection policy, and position of a receiver cell among the remaining
//     cells in ascending grid order
//
// All functions are pure; a [Layout] is computed once from a [Config] and is
// immutable afterwards.
//
// # Usage
//
//	layout, err := geometry.NewLayout(geometry.DefaultConfig())
//	tx, _ := layout.Transmitter(0)
//	center, _ := layout.ReceiverCenter(0, 5)
//	deg := geometry.Bearing(tx.Point, center)
package geometry
