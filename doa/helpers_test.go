package doa

import (
	"testing"

	"github.com/cwbudde/algo-doa/dsp/stft"
	"github.com/cwbudde/algo-doa/internal/testutil"
)

const (
	testRadius = 0.0365
	testMics   = 8
)

func testGeometry() ArrayGeometry {
	return ArrayGeometry{Mics: testutil.Ring(testMics, testRadius)}
}

// planeWave returns the spectrogram of a multitone source at bearing deg
// recorded by the test ring, with optional white noise per channel.
func planeWave(t testing.TB, deg, noise float64) Spectrogram {
	t.Helper()
	p := DefaultParams()
	sig := testutil.PlaneWave(testutil.Ring(testMics, testRadius), deg, p.SampleRate, p.SoundSpeed,
		4800, 500, 4000, 40, 7)

	an, err := stft.NewAnalyzer(stft.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	X := make(Spectrogram, len(sig))
	for m, ch := range sig {
		if noise > 0 {
			n := testutil.DeterministicNoise(int64(100+m), noise, len(ch))
			for i := range ch {
				ch[i] += n[i]
			}
		}
		X[m], err = an.AnalyzeBinMajor(ch)
		if err != nil {
			t.Fatal(err)
		}
	}
	return X
}
