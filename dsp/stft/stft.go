// Package stft computes short-time Fourier transforms of real signals.
//
// Frames of FFTSize samples are taken every Hop samples starting at sample
// 0; a trailing partial frame is dropped. A signal shorter than one frame is
// zero-padded to a single frame. Only the non-negative frequency bins
// 0..FFTSize/2 are kept.
package stft

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-doa/dsp/window"
)

// Errors returned by the analyzer.
var (
	ErrInvalidSize = errors.New("stft: invalid frame configuration")
	ErrEmptySignal = errors.New("stft: signal is empty")
)

// Config holds frame parameters.
type Config struct {
	FFTSize int
	Hop     int
	Window  window.Type
}

// DefaultConfig returns a 512-point rectangular-window transform with a 50%
// hop.
func DefaultConfig() Config {
	return Config{FFTSize: 512, Hop: 256, Window: window.TypeRectangular}
}

// HalfOverlap returns a config with the given FFT size and a hop of half
// the frame.
func HalfOverlap(fftSize int, w window.Type) Config {
	return Config{FFTSize: fftSize, Hop: fftSize / 2, Window: w}
}

// Validate checks the frame parameters.
func (c Config) Validate() error {
	if c.FFTSize < 2 {
		return fmt.Errorf("%w: fft size must be >= 2: %d", ErrInvalidSize, c.FFTSize)
	}
	if c.Hop <= 0 || c.Hop > c.FFTSize {
		return fmt.Errorf("%w: hop must be in [1,%d]: %d", ErrInvalidSize, c.FFTSize, c.Hop)
	}
	return nil
}

// Analyzer computes STFT frames. An Analyzer reuses internal buffers and is
// not safe for concurrent use.
type Analyzer struct {
	cfg  Config
	plan *algofft.Plan[complex128]
	win  []float64
	in   []complex128
	out  []complex128
	buf  []float64
}

// NewAnalyzer creates an analyzer for cfg.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("stft: failed to create FFT plan: %w", err)
	}

	return &Analyzer{
		cfg:  cfg,
		plan: plan,
		win:  window.Generate(cfg.Window, cfg.FFTSize),
		in:   make([]complex128, cfg.FFTSize),
		out:  make([]complex128, cfg.FFTSize),
		buf:  make([]float64, cfg.FFTSize),
	}, nil
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Bins returns the number of frequency bins per frame.
func (a *Analyzer) Bins() int { return a.cfg.FFTSize/2 + 1 }

// NumFrames returns the number of frames produced for a signal of n samples.
func (a *Analyzer) NumFrames(n int) int {
	if n <= 0 {
		return 0
	}
	if n < a.cfg.FFTSize {
		return 1
	}
	return (n-a.cfg.FFTSize)/a.cfg.Hop + 1
}

// BinFrequency returns the center frequency of bin k in Hz.
func (a *Analyzer) BinFrequency(k int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(a.cfg.FFTSize)
}

// Analyze returns the spectrum of every frame, indexed [frame][bin].
func (a *Analyzer) Analyze(x []float64) ([][]complex128, error) {
	frames := a.NumFrames(len(x))
	if frames == 0 {
		return nil, ErrEmptySignal
	}

	out := make([][]complex128, frames)
	for f := range out {
		row := make([]complex128, a.Bins())
		if err := a.frame(x, f*a.cfg.Hop, row); err != nil {
			return nil, err
		}
		out[f] = row
	}

	return out, nil
}

// AnalyzeBinMajor returns the same transform as [Analyzer.Analyze] indexed
// [bin][frame].
func (a *Analyzer) AnalyzeBinMajor(x []float64) ([][]complex128, error) {
	frames, err := a.Analyze(x)
	if err != nil {
		return nil, err
	}

	out := make([][]complex128, a.Bins())
	for k := range out {
		col := make([]complex128, len(frames))
		for f, row := range frames {
			col[f] = row[k]
		}
		out[k] = col
	}

	return out, nil
}

func (a *Analyzer) frame(x []float64, start int, dst []complex128) error {
	n := a.cfg.FFTSize
	for i := range a.buf {
		a.buf[i] = 0
	}
	if start < len(x) {
		copy(a.buf, x[start:min(start+n, len(x))])
	}
	if err := window.Apply(a.buf, a.win); err != nil {
		return err
	}

	for i, v := range a.buf {
		a.in[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return fmt.Errorf("stft: forward FFT failed: %w", err)
	}

	copy(dst, a.out[:len(dst)])
	return nil
}
