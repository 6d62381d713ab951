// Package config loads the doabench configuration from YAML files and
// DOABENCH_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-doa/assemble"
	"github.com/cwbudde/algo-doa/doa"
	"github.com/cwbudde/algo-doa/dsp/stft"
	"github.com/cwbudde/algo-doa/dsp/window"
	"github.com/cwbudde/algo-doa/evaluate"
	"github.com/cwbudde/algo-doa/geometry"
	"github.com/cwbudde/algo-doa/internal/logging"
	"github.com/cwbudde/algo-doa/irstore"
	"github.com/cwbudde/algo-doa/measure/ir"
	"github.com/cwbudde/algo-doa/roomsim"
)

// ErrConfiguration matches every configuration error.
var ErrConfiguration = errors.New("configuration error")

// Error reports an invalid setting in a section of the configuration.
type Error struct {
	Section string
	Err     error
}

func (e *Error) Error() string { return fmt.Sprintf("config: %s: %v", e.Section, e.Err) }

// Is reports whether target is [ErrConfiguration].
func (e *Error) Is(target error) bool { return target == ErrConfiguration }

func (e *Error) Unwrap() error { return e.Err }

func sectionErr(section string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Section: section, Err: err}
}

// Config is the complete doabench configuration.
type Config struct {
	Geometry   GeometryConfig   `yaml:"geometry"`
	Simulation SimulationConfig `yaml:"simulation"`
	Measured   MeasuredConfig   `yaml:"measured"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Onset      OnsetConfig      `yaml:"onset"`
	STFT       STFTConfig       `yaml:"stft"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Split      SplitConfig      `yaml:"split"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GeometryConfig describes the grid and the arrays placed on it.
type GeometryConfig struct {
	Rows          int        `yaml:"rows"`
	Cols          int        `yaml:"cols"`
	Spacing       float64    `yaml:"spacing"`
	Origin        [3]float64 `yaml:"origin"`
	Radius        float64    `yaml:"radius"`
	Channels      int        `yaml:"channels"`
	StartPhaseDeg float64    `yaml:"start_phase_deg"`
	Speakers      string     `yaml:"speakers"`
	SpeakerCells  []int      `yaml:"speaker_cells,omitempty"`
}

// SimulationConfig describes the simulated room.
type SimulationConfig struct {
	Room       [3]float64 `yaml:"room"`
	Absorption float64    `yaml:"absorption"`
	MaxOrder   int        `yaml:"max_order"`
	SampleRate int        `yaml:"sample_rate"`
	SoundSpeed float64    `yaml:"sound_speed"`
	Length     int        `yaml:"length"` // samples kept per response

	// InterpolationOrder places reflections at fractional arrival times;
	// zero rounds to the nearest sample.
	InterpolationOrder int `yaml:"interpolation_order"`
}

// MeasuredConfig locates the measured recordings.
type MeasuredConfig struct {
	Dir          string `yaml:"dir"`
	WindowStart  int    `yaml:"window_start"`
	WindowLength int    `yaml:"window_length"`
}

// DatasetConfig controls the written dataset tree.
type DatasetConfig struct {
	Root         string `yaml:"root"`
	Positions    string `yaml:"positions"` // centered or exact
	ChannelIndex bool   `yaml:"channel_index"`
	SampleRate   int    `yaml:"sample_rate"`
}

// OnsetConfig configures the onset diagnostic.
type OnsetConfig struct {
	Mode      string  `yaml:"mode"`
	Threshold float64 `yaml:"threshold"`
}

// STFTConfig configures the short-time transform.
type STFTConfig struct {
	FFTSize int    `yaml:"fft_size"`
	Hop     int    `yaml:"hop"`
	Window  string `yaml:"window"`
}

// EvaluationConfig configures the evaluation harness.
type EvaluationConfig struct {
	Algorithms []string      `yaml:"algorithms"`
	FreqRange  [2]float64    `yaml:"freq_range"`
	SoundSpeed float64       `yaml:"sound_speed"`
	GridSize   int           `yaml:"grid_size"`
	NumSources int           `yaml:"num_sources"`
	Workers    int           `yaml:"workers"`
	Timeout    time.Duration `yaml:"timeout"`
	Failure    string        `yaml:"failure"`
	Output     string        `yaml:"output"`
	Database   string        `yaml:"database,omitempty"`
}

// SplitConfig configures the train/test split.
type SplitConfig struct {
	Ratio  float64 `yaml:"ratio"`
	Seed   int64   `yaml:"seed"`
	Output string  `yaml:"output"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration of the reference setup.
func Default() *Config {
	g := geometry.DefaultConfig()
	room := roomsim.DefaultRoom()
	w := irstore.DefaultWindow()
	s := stft.DefaultConfig()
	p := doa.DefaultParams()
	return &Config{
		Geometry: GeometryConfig{
			Rows:          g.Rows,
			Cols:          g.Cols,
			Spacing:       g.Spacing,
			Origin:        g.Origin,
			Radius:        g.Radius,
			Channels:      g.Channels,
			StartPhaseDeg: g.StartPhase * 180 / math.Pi,
			Speakers:      geometry.PolicyCornersAndCenter,
		},
		Simulation: SimulationConfig{
			Room:       room.Dimensions,
			Absorption: room.Absorption,
			MaxOrder:   room.MaxOrder,
			SampleRate: room.SampleRate,
			SoundSpeed: room.SoundSpeed,
			Length:     irstore.DefaultSimulatedLength,

			InterpolationOrder: 3,
		},
		Measured: MeasuredConfig{
			Dir:          "measurements",
			WindowStart:  w.Start,
			WindowLength: w.Length,
		},
		Dataset: DatasetConfig{
			Root:       "dataset",
			Positions:  irstore.PositionExact.String(),
			SampleRate: roomsim.DefaultSampleRate,
		},
		Onset: OnsetConfig{
			Mode:      ir.ThresholdAbsolute.String(),
			Threshold: 0.05,
		},
		STFT: STFTConfig{
			FFTSize: s.FFTSize,
			Hop:     s.Hop,
			Window:  s.Window.String(),
		},
		Evaluation: EvaluationConfig{
			Algorithms: doa.Names(),
			FreqRange:  p.FreqRange,
			SoundSpeed: p.SoundSpeed,
			GridSize:   p.GridSize,
			NumSources: p.NumSources,
			Workers:    1,
			Failure:    evaluate.FailAbort.String(),
			Output:     "doa_results.json",
		},
		Split: SplitConfig{
			Ratio:  0.2,
			Seed:   42,
			Output: "split.json",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// LoadFromFile reads a YAML file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document leaves the defaults in place.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Section: "file", Err: fmt.Errorf("parsing %s: %w", path, err)}
	}
	return cfg, nil
}

// Load builds the configuration: defaults, then path if non-empty, then
// environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment variables read by [Load].
const (
	EnvLogLevel    = "DOABENCH_LOG_LEVEL"
	EnvDatasetRoot = "DOABENCH_DATASET_ROOT"
	EnvMeasuredDir = "DOABENCH_MEASURED_DIR"
	EnvAlgorithms  = "DOABENCH_ALGORITHMS"
	EnvWorkers     = "DOABENCH_WORKERS"
	EnvTimeout     = "DOABENCH_TIMEOUT"
	EnvFailure     = "DOABENCH_FAILURE"
	EnvSplitSeed   = "DOABENCH_SPLIT_SEED"
	EnvSplitRatio  = "DOABENCH_SPLIT_RATIO"
)

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvDatasetRoot); v != "" {
		cfg.Dataset.Root = v
	}
	if v := os.Getenv(EnvMeasuredDir); v != "" {
		cfg.Measured.Dir = v
	}
	if v := os.Getenv(EnvAlgorithms); v != "" {
		var names []string
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		cfg.Evaluation.Algorithms = names
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Section: "env", Err: fmt.Errorf("%s: %w", EnvWorkers, err)}
		}
		cfg.Evaluation.Workers = n
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &Error{Section: "env", Err: fmt.Errorf("%s: %w", EnvTimeout, err)}
		}
		cfg.Evaluation.Timeout = d
	}
	if v := os.Getenv(EnvFailure); v != "" {
		cfg.Evaluation.Failure = v
	}
	if v := os.Getenv(EnvSplitSeed); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &Error{Section: "env", Err: fmt.Errorf("%s: %w", EnvSplitSeed, err)}
		}
		cfg.Split.Seed = n
	}
	if v := os.Getenv(EnvSplitRatio); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return &Error{Section: "env", Err: fmt.Errorf("%s: %w", EnvSplitRatio, err)}
		}
		cfg.Split.Ratio = f
	}
	return nil
}

// Validate checks every section. The first failure is returned as an
// [*Error] naming its section.
func (c *Config) Validate() error {
	if _, err := c.GeometryConfig(); err != nil {
		return err
	}
	if err := sectionErr("simulation", c.Room().Validate()); err != nil {
		return err
	}
	if c.Simulation.Length <= 0 {
		return &Error{Section: "simulation", Err: fmt.Errorf("length must be positive: %d", c.Simulation.Length)}
	}
	if c.Simulation.InterpolationOrder < 0 {
		return &Error{Section: "simulation", Err: fmt.Errorf("interpolation order must be >= 0: %d", c.Simulation.InterpolationOrder)}
	}
	if err := sectionErr("measured", c.Window().Validate()); err != nil {
		return err
	}
	if _, err := c.WriteOptions(); err != nil {
		return err
	}
	if c.Dataset.SampleRate <= 0 {
		return &Error{Section: "dataset", Err: fmt.Errorf("sample rate must be positive: %d", c.Dataset.SampleRate)}
	}
	if _, err := c.OnsetDetector(); err != nil {
		return err
	}
	if _, err := c.Evaluate(); err != nil {
		return err
	}
	if c.Split.Ratio < 0 || c.Split.Ratio > 1 {
		return &Error{Section: "split", Err: fmt.Errorf("ratio %v outside [0, 1]", c.Split.Ratio)}
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return &Error{Section: "logging", Err: fmt.Errorf("invalid level %q (valid: debug, info, warn, error)", c.Logging.Level)}
	}
	return nil
}

// GeometryConfig converts the geometry section.
func (c *Config) GeometryConfig() (geometry.Config, error) {
	g := c.Geometry
	policy, err := geometry.PolicyByName(g.Speakers, g.SpeakerCells)
	if err != nil {
		return geometry.Config{}, sectionErr("geometry", err)
	}
	out := geometry.Config{
		Rows:       g.Rows,
		Cols:       g.Cols,
		Spacing:    g.Spacing,
		Origin:     geometry.Point(g.Origin),
		Radius:     g.Radius,
		Channels:   g.Channels,
		StartPhase: g.StartPhaseDeg * math.Pi / 180,
		Speakers:   policy,
	}
	return out, sectionErr("geometry", out.Validate())
}

// Layout builds the layout of the geometry section.
func (c *Config) Layout() (*geometry.Layout, error) {
	g, err := c.GeometryConfig()
	if err != nil {
		return nil, err
	}
	l, err := geometry.NewLayout(g)
	return l, sectionErr("geometry", err)
}

// Room converts the simulation section.
func (c *Config) Room() roomsim.Room {
	s := c.Simulation
	return roomsim.Room{
		Dimensions: geometry.Point(s.Room),
		Absorption: s.Absorption,
		MaxOrder:   s.MaxOrder,
		SampleRate: s.SampleRate,
		SoundSpeed: s.SoundSpeed,
	}
}

// Simulator returns the image-source simulator of the simulation section.
func (c *Config) Simulator() roomsim.ImageSource {
	return roomsim.ImageSource{Length: c.Simulation.Length, Order: c.Simulation.InterpolationOrder}
}

// Window converts the measured window.
func (c *Config) Window() irstore.Window {
	return irstore.Window{Start: c.Measured.WindowStart, Length: c.Measured.WindowLength}
}

// WriteOptions converts the dataset section.
func (c *Config) WriteOptions() (irstore.WriteOptions, error) {
	mode, err := irstore.ParsePositionMode(c.Dataset.Positions)
	if err != nil {
		return irstore.WriteOptions{}, sectionErr("dataset", err)
	}
	return irstore.WriteOptions{Positions: mode, ChannelIndex: c.Dataset.ChannelIndex}, nil
}

// OnsetDetector converts the onset section.
func (c *Config) OnsetDetector() (ir.OnsetDetector, error) {
	mode, err := ir.ParseThresholdMode(c.Onset.Mode)
	if err != nil {
		return ir.OnsetDetector{}, sectionErr("onset", err)
	}
	d := ir.OnsetDetector{Mode: mode, Threshold: c.Onset.Threshold}
	return d, sectionErr("onset", d.Validate())
}

// STFTConfig converts the stft section.
func (c *Config) STFTConfig() (stft.Config, error) {
	w, err := window.Parse(c.STFT.Window)
	if err != nil {
		return stft.Config{}, sectionErr("stft", err)
	}
	s := stft.Config{FFTSize: c.STFT.FFTSize, Hop: c.STFT.Hop, Window: w}
	return s, sectionErr("stft", s.Validate())
}

// Params returns the estimator parameters. The sample rate is the dataset's.
func (c *Config) Params() doa.Params {
	e := c.Evaluation
	return doa.Params{
		SampleRate: float64(c.Dataset.SampleRate),
		FFTSize:    c.STFT.FFTSize,
		FreqRange:  e.FreqRange,
		SoundSpeed: e.SoundSpeed,
		GridSize:   e.GridSize,
		NumSources: e.NumSources,
	}
}

// Evaluate assembles the harness configuration.
func (c *Config) Evaluate() (evaluate.Config, error) {
	g, err := c.GeometryConfig()
	if err != nil {
		return evaluate.Config{}, err
	}
	s, err := c.STFTConfig()
	if err != nil {
		return evaluate.Config{}, err
	}
	opts, err := c.WriteOptions()
	if err != nil {
		return evaluate.Config{}, err
	}
	policy, err := evaluate.ParseFailurePolicy(c.Evaluation.Failure)
	if err != nil {
		return evaluate.Config{}, sectionErr("evaluation", err)
	}

	acfg := assemble.ConfigFor(g)
	acfg.STFT = s
	acfg.Positions = opts.Positions

	out := evaluate.Config{
		Algorithms: append([]string(nil), c.Evaluation.Algorithms...),
		Params:     c.Params(),
		Assemble:   acfg,
		Workers:    c.Evaluation.Workers,
		Timeout:    c.Evaluation.Timeout,
		Failure:    policy,
	}
	return out, sectionErr("evaluation", out.Validate())
}
