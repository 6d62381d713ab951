package ir

import (
	"math"
	"testing"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		name             string
		x                []float64
		peak, rms, crest float64
	}{
		{"empty", nil, 0, 0, 0},
		{"silent", []float64{0, 0, 0}, 0, 0, 0},
		{"square", []float64{1, -1, 1, -1}, 1, 1, 1},
		{"impulse", []float64{0, 0, -2, 0}, 2, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Peak(tt.x); math.Abs(got-tt.peak) > 1e-12 {
				t.Errorf("Peak = %v, want %v", got, tt.peak)
			}
			if got := RMS(tt.x); math.Abs(got-tt.rms) > 1e-12 {
				t.Errorf("RMS = %v, want %v", got, tt.rms)
			}
			if got := CrestFactor(tt.x); math.Abs(got-tt.crest) > 1e-12 {
				t.Errorf("CrestFactor = %v, want %v", got, tt.crest)
			}
		})
	}
}

func TestLevelRange(t *testing.T) {
	var r LevelRange
	r.Observe([]float64{0.5, -0.1})
	r.Observe([]float64{0, 0})
	r.Observe([]float64{-3})

	if r.Windows != 3 || r.Silent != 1 {
		t.Fatalf("windows=%d silent=%d", r.Windows, r.Silent)
	}
	if r.PeakMin != 0 || r.PeakMax != 3 {
		t.Fatalf("peak range [%v, %v], want [0, 3]", r.PeakMin, r.PeakMax)
	}
	// [0.5, -0.1]: rms = sqrt(0.13)
	if want := 0.5 / math.Sqrt(0.13); math.Abs(r.CrestMax-want) > 1e-12 {
		t.Fatalf("CrestMax = %v, want %v", r.CrestMax, want)
	}
}
