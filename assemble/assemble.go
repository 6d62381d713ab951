// Package assemble turns a complete array record into the tensors consumed
// by direction-of-arrival estimators: a channel-major time tensor, its
// short-time spectrum indexed [channel][bin][frame], and the array geometry.
package assemble

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-doa/doa"
	"github.com/cwbudde/algo-doa/dsp/stft"
	"github.com/cwbudde/algo-doa/geometry"
	"github.com/cwbudde/algo-doa/irstore"
)

// ErrInvalidConfig is returned for unusable assembler settings.
var ErrInvalidConfig = errors.New("assemble: invalid configuration")

// Config configures an [Assembler].
type Config struct {
	STFT stft.Config

	// Positions selects the per-channel position metadata. It must be set
	// explicitly; the zero value is rejected.
	Positions irstore.PositionMode

	// Radius, StartPhase and Channels describe the nominal circular array
	// handed to estimators, centered on the measured array center.
	Radius     float64
	StartPhase float64
	Channels   int
}

// ConfigFor returns a config with the default STFT and the array shape of
// gcfg. The position mode is left unset.
func ConfigFor(gcfg geometry.Config) Config {
	return Config{
		STFT:       stft.DefaultConfig(),
		Radius:     gcfg.Radius,
		StartPhase: gcfg.StartPhase,
		Channels:   gcfg.Channels,
	}
}

// Validate checks c.
func (c Config) Validate() error {
	if !c.Positions.Valid() {
		return fmt.Errorf("%w: position mode must be centered or exact", ErrInvalidConfig)
	}
	if err := c.STFT.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !(c.Radius > 0) {
		return fmt.Errorf("%w: array radius must be positive: %v", ErrInvalidConfig, c.Radius)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("%w: channel count must be positive: %d", ErrInvalidConfig, c.Channels)
	}
	return nil
}

// Signals is the assembled view of one array.
type Signals struct {
	Key        irstore.PairKey
	SampleRate int

	// Time holds the samples indexed [channel][sample]; every channel has
	// the length of the longest input channel.
	Time [][]float64
	// Spectrum holds the STFT indexed [channel][bin][frame].
	Spectrum doa.Spectrogram

	// Positions holds the reported receiver coordinate per channel under
	// the configured position mode.
	Positions   []geometry.Point
	Center      geometry.Point
	Transmitter geometry.Point

	// Array is the estimator geometry: the nominal circular array around
	// Center.
	Array doa.ArrayGeometry
}

// TrueBearing returns the bearing of the transmitter seen from the array
// center in [0, 360).
func (s *Signals) TrueBearing() float64 {
	return geometry.Bearing(s.Transmitter, s.Center)
}

// Assembler builds [Signals] from array records. An Assembler reuses an STFT
// analyzer and is not safe for concurrent use.
type Assembler struct {
	cfg Config
	an  *stft.Analyzer
}

// New returns an assembler for cfg.
func New(cfg Config) (*Assembler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	an, err := stft.NewAnalyzer(cfg.STFT)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Assembler{cfg: cfg, an: an}, nil
}

// Config returns the assembler configuration.
func (a *Assembler) Config() Config { return a.cfg }

// Assemble builds the tensors of rec. rec must be complete and hold the
// configured number of channels; otherwise an error matching
// irstore.ErrIncompleteArray is returned.
func (a *Assembler) Assemble(rec *irstore.ArrayRecord) (*Signals, error) {
	if len(rec.Channels) != a.cfg.Channels {
		return nil, &irstore.IncompleteArrayError{Key: rec.Key, Missing: rec.Missing(), Want: a.cfg.Channels}
	}
	if err := rec.Check(); err != nil {
		return nil, err
	}

	length := 0
	for _, ir := range rec.Channels {
		length = max(length, len(ir.Samples))
	}
	if length == 0 {
		return nil, fmt.Errorf("assemble: %s: %w", rec.Key, stft.ErrEmptySignal)
	}

	timeT := make([][]float64, len(rec.Channels))
	spec := make(doa.Spectrogram, len(rec.Channels))
	for ch, ir := range rec.Channels {
		x := make([]float64, length)
		copy(x, ir.Samples)
		timeT[ch] = x

		X, err := a.an.AnalyzeBinMajor(x)
		if err != nil {
			return nil, fmt.Errorf("assemble: %s channel %d: %w", rec.Key, ch, err)
		}
		spec[ch] = X
	}

	positions, err := rec.Positions(a.cfg.Positions)
	if err != nil {
		return nil, err
	}
	center := rec.Center()

	return &Signals{
		Key:         rec.Key,
		SampleRate:  rec.SampleRate(),
		Time:        timeT,
		Spectrum:    spec,
		Positions:   positions,
		Center:      center,
		Transmitter: rec.Transmitter(),
		Array:       doa.CircularGeometry([2]float64{center.X(), center.Y()}, a.cfg.Radius, a.cfg.Channels, a.cfg.StartPhase),
	}, nil
}
