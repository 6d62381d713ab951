package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-doa/doa"
	"github.com/cwbudde/algo-doa/evaluate"
	"github.com/cwbudde/algo-doa/geometry"
	"github.com/cwbudde/algo-doa/irstore"
	"github.com/cwbudde/algo-doa/measure/ir"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doabench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	g, err := cfg.GeometryConfig()
	require.NoError(t, err)
	want := geometry.DefaultConfig()
	assert.Equal(t, want.Rows, g.Rows)
	assert.Equal(t, want.Origin, g.Origin)
	assert.InDelta(t, want.StartPhase, g.StartPhase, 1e-12)
	assert.Equal(t, geometry.PolicyCornersAndCenter, g.Speakers.Name())

	ecfg, err := cfg.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, doa.DefaultParams(), ecfg.Params)
	assert.Equal(t, irstore.PositionExact, ecfg.Assemble.Positions)
	assert.Equal(t, evaluate.FailAbort, ecfg.Failure)
	assert.ElementsMatch(t, doa.Names(), ecfg.Algorithms)

	det, err := cfg.OnsetDetector()
	require.NoError(t, err)
	assert.Equal(t, ir.ThresholdAbsolute, det.Mode)
	assert.InDelta(t, 0.05, det.Threshold, 1e-12)
}

func TestLoadFromFile(t *testing.T) {
	path := writeFile(t, `
geometry:
  speakers: explicit
  speaker_cells: [0, 5]
onset:
  mode: peak-relative
  threshold: 0.5
evaluation:
  algorithms: [SRP, MUSIC]
  workers: 4
  timeout: 2s
  failure: record
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	layout, err := cfg.Layout()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 5}, layout.SpeakerIndices())

	det, err := cfg.OnsetDetector()
	require.NoError(t, err)
	assert.Equal(t, ir.ThresholdPeakRelative, det.Mode)

	ecfg, err := cfg.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, []string{"SRP", "MUSIC"}, ecfg.Algorithms)
	assert.Equal(t, 4, ecfg.Workers)
	assert.Equal(t, 2*time.Second, ecfg.Timeout)
	assert.Equal(t, evaluate.FailRecord, ecfg.Failure)

	// Untouched sections keep their defaults.
	assert.Equal(t, Default().Simulation, cfg.Simulation)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	_, err := Load(writeFile(t, "evaluation:\n  algoritms: [SRP]\n"))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAlgorithms, "SRP, NormMUSIC")
	t.Setenv(EnvWorkers, "3")
	t.Setenv(EnvTimeout, "150ms")
	t.Setenv(EnvSplitSeed, "7")
	t.Setenv(EnvSplitRatio, "0.3")
	t.Setenv(EnvDatasetRoot, "/data/sim")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"SRP", "NormMUSIC"}, cfg.Evaluation.Algorithms)
	assert.Equal(t, 3, cfg.Evaluation.Workers)
	assert.Equal(t, 150*time.Millisecond, cfg.Evaluation.Timeout)
	assert.Equal(t, int64(7), cfg.Split.Seed)
	assert.InDelta(t, 0.3, cfg.Split.Ratio, 1e-12)
	assert.Equal(t, "/data/sim", cfg.Dataset.Root)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestEnvOverrideInvalidNumber(t *testing.T) {
	t.Setenv(EnvWorkers, "many")
	_, err := Load("")
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "env", cerr.Section)
}

func TestValidateNamesSection(t *testing.T) {
	tests := []struct {
		section string
		mutate  func(*Config)
		leaf    error
	}{
		{"geometry", func(c *Config) { c.Geometry.Rows = 0 }, geometry.ErrInvalidConfig},
		{"geometry", func(c *Config) { c.Geometry.Speakers = "random" }, geometry.ErrInvalidConfig},
		{"simulation", func(c *Config) { c.Simulation.Absorption = 1.5 }, nil},
		{"simulation", func(c *Config) { c.Simulation.Length = 0 }, nil},
		{"simulation", func(c *Config) { c.Simulation.InterpolationOrder = -1 }, nil},
		{"measured", func(c *Config) { c.Measured.WindowLength = 0 }, irstore.ErrInvalidConfig},
		{"dataset", func(c *Config) { c.Dataset.Positions = "approximate" }, nil},
		{"onset", func(c *Config) { c.Onset.Threshold = 0 }, ir.ErrInvalidThreshold},
		{"stft", func(c *Config) { c.STFT.Hop = 0 }, nil},
		{"evaluation", func(c *Config) { c.Evaluation.Algorithms = []string{"ESPRIT"} }, evaluate.ErrInvalidConfig},
		{"evaluation", func(c *Config) { c.Evaluation.Failure = "ignore" }, evaluate.ErrInvalidConfig},
		{"split", func(c *Config) { c.Split.Ratio = 2 }, nil},
		{"logging", func(c *Config) { c.Logging.Level = "trace" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrConfiguration)
			var cerr *Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.section, cerr.Section)
			if tt.leaf != nil {
				assert.ErrorIs(t, err, tt.leaf)
			}
		})
	}
}
