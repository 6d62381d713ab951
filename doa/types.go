package doa

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by doa.
var (
	ErrInvalidConfig = errors.New("doa: invalid configuration")
	ErrShape         = errors.New("doa: spectrogram shape mismatch")
	ErrUnknown       = errors.New("doa: unknown algorithm")
	ErrEmptyResponse = errors.New("doa: empty response")
)

// Spectrogram is a multichannel short-time spectrum indexed [channel][bin][frame].
type Spectrogram [][][]complex128

// Channels returns the number of channels.
func (s Spectrogram) Channels() int { return len(s) }

// Bins returns the number of frequency bins of the first channel.
func (s Spectrogram) Bins() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

// Frames returns the number of frames of the first bin of the first channel.
func (s Spectrogram) Frames() int {
	if len(s) == 0 || len(s[0]) == 0 {
		return 0
	}
	return len(s[0][0])
}

// Validate checks that s is a full channels x bins x frames tensor.
func (s Spectrogram) Validate(channels, bins int) error {
	if len(s) != channels {
		return fmt.Errorf("%w: %d channels, want %d", ErrShape, len(s), channels)
	}
	frames := s.Frames()
	if frames == 0 {
		return fmt.Errorf("%w: no frames", ErrShape)
	}
	for m, ch := range s {
		if len(ch) != bins {
			return fmt.Errorf("%w: channel %d has %d bins, want %d", ErrShape, m, len(ch), bins)
		}
		for k, b := range ch {
			if len(b) != frames {
				return fmt.Errorf("%w: channel %d bin %d has %d frames, want %d", ErrShape, m, k, len(b), frames)
			}
		}
	}
	return nil
}

// ArrayGeometry holds the horizontal positions of the array microphones in
// meters, in channel order.
type ArrayGeometry struct {
	Mics [][2]float64
}

// Channels returns the number of microphones.
func (g ArrayGeometry) Channels() int { return len(g.Mics) }

// Center returns the centroid of the microphones.
func (g ArrayGeometry) Center() [2]float64 {
	var c [2]float64
	if len(g.Mics) == 0 {
		return c
	}
	for _, p := range g.Mics {
		c[0] += p[0]
		c[1] += p[1]
	}
	n := float64(len(g.Mics))
	return [2]float64{c[0] / n, c[1] / n}
}

// Relative returns the microphone positions relative to the centroid.
func (g ArrayGeometry) Relative() [][2]float64 {
	c := g.Center()
	out := make([][2]float64, len(g.Mics))
	for i, p := range g.Mics {
		out[i] = [2]float64{p[0] - c[0], p[1] - c[1]}
	}
	return out
}

// CircularGeometry places channels microphones on a circle of radius around
// center, channel k at startPhase + k*2*pi/channels, counter-clockwise.
func CircularGeometry(center [2]float64, radius float64, channels int, startPhase float64) ArrayGeometry {
	mics := make([][2]float64, channels)
	for k := range mics {
		a := startPhase + float64(k)*2*math.Pi/float64(channels)
		mics[k] = [2]float64{center[0] + radius*math.Cos(a), center[1] + radius*math.Sin(a)}
	}
	return ArrayGeometry{Mics: mics}
}

// Default estimator parameters.
const (
	DefaultSampleRate = 48000
	DefaultFFTSize    = 512
	DefaultSoundSpeed = 343.0
	DefaultGridSize   = 360
)

// Params configures an estimator.
type Params struct {
	SampleRate float64    // Hz
	FFTSize    int        // FFT size the spectrogram was computed with
	FreqRange  [2]float64 // analysed band in Hz, inclusive
	SoundSpeed float64    // m/s
	GridSize   int        // bearing bins over the full circle
	NumSources int        // signal subspace dimension for subspace methods
}

// DefaultParams returns 48 kHz, 512-point FFT, 500-4000 Hz, 343 m/s, one
// bin per degree and a single source.
func DefaultParams() Params {
	return Params{
		SampleRate: DefaultSampleRate,
		FFTSize:    DefaultFFTSize,
		FreqRange:  [2]float64{500, 4000},
		SoundSpeed: DefaultSoundSpeed,
		GridSize:   DefaultGridSize,
		NumSources: 1,
	}
}

// Validate checks p.
func (p Params) Validate() error {
	switch {
	case !(p.SampleRate > 0):
		return fmt.Errorf("%w: sample rate must be positive: %v", ErrInvalidConfig, p.SampleRate)
	case p.FFTSize < 2:
		return fmt.Errorf("%w: fft size must be >= 2: %d", ErrInvalidConfig, p.FFTSize)
	case !(p.SoundSpeed > 0):
		return fmt.Errorf("%w: sound speed must be positive: %v", ErrInvalidConfig, p.SoundSpeed)
	case p.GridSize <= 0:
		return fmt.Errorf("%w: grid size must be positive: %d", ErrInvalidConfig, p.GridSize)
	case p.NumSources <= 0:
		return fmt.Errorf("%w: number of sources must be positive: %d", ErrInvalidConfig, p.NumSources)
	case p.FreqRange[0] < 0 || p.FreqRange[1] < p.FreqRange[0]:
		return fmt.Errorf("%w: frequency range %v", ErrInvalidConfig, p.FreqRange)
	case p.FreqRange[0] > p.SampleRate/2:
		return fmt.Errorf("%w: frequency range %v above Nyquist", ErrInvalidConfig, p.FreqRange)
	}
	return nil
}

// Bins returns the number of one-sided spectrum bins, FFTSize/2+1.
func (p Params) Bins() int { return p.FFTSize/2 + 1 }

// FrequencyBins returns the spectrum bins inside FreqRange, rounded to the
// nearest bin and clamped to exclude DC.
func (p Params) FrequencyBins() []int {
	lo := int(math.Round(p.FreqRange[0] / p.SampleRate * float64(p.FFTSize)))
	hi := int(math.Round(p.FreqRange[1] / p.SampleRate * float64(p.FFTSize)))
	lo = max(lo, 1)
	hi = min(hi, p.FFTSize/2)
	var out []int
	for k := lo; k <= hi; k++ {
		out = append(out, k)
	}
	return out
}

// GridBearing returns the bearing in degrees of grid bin i.
func (p Params) GridBearing(i int) float64 {
	return float64(i) * 360 / float64(p.GridSize)
}
