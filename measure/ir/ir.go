package ir

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Errors returned by IR functions.
var (
	ErrEmptyIR          = errors.New("ir: impulse response is empty")
	ErrInvalidWindow    = errors.New("ir: invalid extraction window")
	ErrInvalidThreshold = errors.New("ir: threshold must be positive")
)

// Extract returns the window x[start:start+length]. Samples past the end of
// x are zero. The result is always a new slice of exactly length samples.
func Extract(x []float64, start, length int) ([]float64, error) {
	if start < 0 || length <= 0 {
		return nil, fmt.Errorf("%w: start=%d length=%d", ErrInvalidWindow, start, length)
	}

	out := make([]float64, length)
	if start < len(x) {
		copy(out, x[start:])
	}
	return out, nil
}

// Fit truncates or zero-pads x to exactly length samples.
func Fit(x []float64, length int) []float64 {
	if length <= 0 {
		return nil
	}
	out := make([]float64, length)
	copy(out, x)
	return out
}

// PeakIndex returns the index of the sample with the largest absolute value.
func PeakIndex(x []float64) (int, error) {
	if len(x) == 0 {
		return 0, ErrEmptyIR
	}
	idx := 0
	peak := 0.0
	for i, v := range x {
		if av := math.Abs(v); av > peak {
			peak = av
			idx = i
		}
	}
	return idx, nil
}

// ThresholdMode selects how an onset threshold is interpreted.
type ThresholdMode int

const (
	// ThresholdAbsolute compares |x| against the threshold directly.
	ThresholdAbsolute ThresholdMode = iota
	// ThresholdPeakRelative compares |x| against threshold * max|x| of the window.
	ThresholdPeakRelative
)

// String returns the configuration name of m.
func (m ThresholdMode) String() string {
	switch m {
	case ThresholdAbsolute:
		return "absolute"
	case ThresholdPeakRelative:
		return "peak-relative"
	default:
		return fmt.Sprintf("ThresholdMode(%d)", int(m))
	}
}

// ParseThresholdMode resolves a mode from its configuration name. The empty
// string selects [ThresholdAbsolute].
func ParseThresholdMode(s string) (ThresholdMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "absolute":
		return ThresholdAbsolute, nil
	case "peak-relative", "relative":
		return ThresholdPeakRelative, nil
	default:
		return 0, fmt.Errorf("ir: unknown threshold mode %q (valid: absolute, peak-relative)", s)
	}
}

// OnsetDetector finds the first sample above a threshold.
type OnsetDetector struct {
	Mode      ThresholdMode
	Threshold float64
}

// Validate checks the detector parameters.
func (d OnsetDetector) Validate() error {
	if !(d.Threshold > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, d.Threshold)
	}
	if d.Mode == ThresholdPeakRelative && d.Threshold > 1 {
		return fmt.Errorf("%w: peak-relative threshold must be <= 1: %v", ErrInvalidThreshold, d.Threshold)
	}
	return nil
}

// Find returns the onset index of x and whether any sample crossed the
// threshold. In absolute mode the crossing is strict (|x| > threshold); in
// peak-relative mode the peak itself always qualifies (|x| >= threshold*peak),
// so only an all-zero window has no onset.
func (d OnsetDetector) Find(x []float64) (int, bool) {
	switch d.Mode {
	case ThresholdPeakRelative:
		peak := 0.0
		for _, v := range x {
			peak = math.Max(peak, math.Abs(v))
		}
		if peak == 0 {
			return 0, false
		}
		limit := peak * d.Threshold
		for i, v := range x {
			if math.Abs(v) >= limit {
				return i, true
			}
		}
		return 0, false
	default:
		return FindOnset(x, d.Threshold)
	}
}

// FindOnset returns the first index where |x| > threshold.
func FindOnset(x []float64, threshold float64) (int, bool) {
	for i, v := range x {
		if math.Abs(v) > threshold {
			return i, true
		}
	}
	return 0, false
}

// OnsetStats summarises onset indices collected over many windows.
type OnsetStats struct {
	Count      int     // windows with an onset
	NoCrossing int     // windows that never crossed the threshold
	Mean       float64 // mean onset index in samples
	Std        float64 // population standard deviation in samples
	Min        int
	Max        int
}

// OnsetCollector accumulates onset indices. The zero value is ready to use.
type OnsetCollector struct {
	indices    []float64
	noCrossing int
}

// Observe records the result of [OnsetDetector.Find].
func (c *OnsetCollector) Observe(idx int, ok bool) {
	if !ok {
		c.noCrossing++
		return
	}
	c.indices = append(c.indices, float64(idx))
}

// Merge folds other into c.
func (c *OnsetCollector) Merge(other *OnsetCollector) {
	c.indices = append(c.indices, other.indices...)
	c.noCrossing += other.noCrossing
}

// Stats returns the summary of all observations so far. Mean and Std are
// NaN when no window had an onset.
func (c *OnsetCollector) Stats() OnsetStats {
	s := OnsetStats{Count: len(c.indices), NoCrossing: c.noCrossing}
	if len(c.indices) == 0 {
		s.Mean = math.NaN()
		s.Std = math.NaN()
		return s
	}

	s.Mean, s.Std = stat.PopMeanStdDev(c.indices, nil)
	s.Min, s.Max = int(c.indices[0]), int(c.indices[0])
	for _, v := range c.indices {
		s.Min = min(s.Min, int(v))
		s.Max = max(s.Max, int(v))
	}
	return s
}
