package ir

import "math"

// Peak returns the largest absolute sample of x, or 0 for an empty slice.
func Peak(x []float64) float64 {
	var peak float64
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	return peak
}

// RMS returns the root-mean-square of x, or 0 for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range x {
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(len(x)))
}

// CrestFactor returns Peak/RMS, or 0 for a silent window.
func CrestFactor(x []float64) float64 {
	r := RMS(x)
	if r == 0 {
		return 0
	}
	return Peak(x) / r
}

// LevelRange tracks the spread of window peaks. The zero value is ready to
// use.
type LevelRange struct {
	Windows int
	PeakMin float64
	PeakMax float64
	// CrestMax is the largest peak-to-RMS ratio seen. A clean direct path
	// gives a high crest factor; a noise-dominated window stays near 1-2.
	CrestMax float64
	Silent   int // all-zero windows
}

// Observe adds the window x.
func (r *LevelRange) Observe(x []float64) {
	p := Peak(x)
	if p == 0 {
		r.Silent++
	}
	if r.Windows == 0 {
		r.PeakMin, r.PeakMax = p, p
	} else {
		r.PeakMin = math.Min(r.PeakMin, p)
		r.PeakMax = math.Max(r.PeakMax, p)
	}
	r.CrestMax = math.Max(r.CrestMax, CrestFactor(x))
	r.Windows++
}
