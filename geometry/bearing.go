package geometry

import "math"

// NormalizeDegrees wraps deg into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	// math.Mod of a tiny negative value can round up to exactly 360.
	if d >= 360 {
		d = 0
	}
	return d
}

// Bearing returns the direction from reference towards source in degrees,
// counter-clockwise from the +x axis, wrapped into [0, 360). Only the
// horizontal components are used.
func Bearing(source, reference Point) float64 {
	dx := source[0] - reference[0]
	dy := source[1] - reference[1]
	return NormalizeDegrees(math.Atan2(dy, dx) * 180 / math.Pi)
}

// CircularError returns the absolute angular distance between two bearings
// in degrees, in [0, 180].
func CircularError(a, b float64) float64 {
	d := math.Abs(NormalizeDegrees(a) - NormalizeDegrees(b))
	return math.Min(d, 360-d)
}
