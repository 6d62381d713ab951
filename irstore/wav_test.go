package irstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youpy/go-wav"
)

func writeTestWav(t *testing.T, path string, values []int, sampleRate uint32) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	samples := make([]wav.Sample, len(values))
	for i, v := range values {
		samples[i].Values[0] = v
	}
	w := wav.NewWriter(f, uint32(len(samples)), 1, sampleRate, 16)
	require.NoError(t, w.WriteSamples(samples))
}

func TestWavReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "01_07_1.wav")
	writeTestWav(t, path, []int{0, 16384, -8192, 0}, 48000)

	samples, rate, err := WavReader{}.Read(path)
	require.NoError(t, err)
	assert.Equal(t, 48000, rate)
	require.Len(t, samples, 4)
	assert.InDelta(t, 0.5, samples[1], 1e-9)
	assert.InDelta(t, -0.25, samples[2], 1e-9)
}

func TestWavReaderMissing(t *testing.T) {
	_, _, err := WavReader{}.Read(filepath.Join(t.TempDir(), "absent.wav"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
