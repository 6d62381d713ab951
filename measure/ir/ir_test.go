package ir

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-doa/internal/testutil"
)

func TestExtract(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}

	tests := []struct {
		name          string
		start, length int
		want          []float64
	}{
		{"inside", 1, 3, []float64{1, 2, 3}},
		{"pads past end", 4, 4, []float64{4, 5, 0, 0}},
		{"entirely past end", 10, 2, []float64{0, 0}},
		{"whole", 0, 6, []float64{0, 1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(x, tt.start, tt.length)
			if err != nil {
				t.Fatal(err)
			}
			testutil.RequireSliceNearlyEqual(t, got, tt.want, 0)
		})
	}

	got, _ := Extract(x, 0, 2)
	got[0] = 99
	if x[0] != 0 {
		t.Fatal("Extract aliases its input")
	}
}

func TestExtractInvalid(t *testing.T) {
	if _, err := Extract([]float64{1}, -1, 2); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("err = %v, want ErrInvalidWindow", err)
	}
	if _, err := Extract([]float64{1}, 0, 0); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("err = %v, want ErrInvalidWindow", err)
	}
}

func TestFit(t *testing.T) {
	testutil.RequireSliceNearlyEqual(t, Fit([]float64{1, 2, 3}, 2), []float64{1, 2}, 0)
	testutil.RequireSliceNearlyEqual(t, Fit([]float64{1}, 3), []float64{1, 0, 0}, 0)
	if Fit([]float64{1}, 0) != nil {
		t.Fatal("expected nil for zero length")
	}
}

func TestPeakIndex(t *testing.T) {
	idx, err := PeakIndex([]float64{0.1, -0.9, 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if idx != 1 {
		t.Fatalf("PeakIndex = %d, want 1", idx)
	}
	if _, err := PeakIndex(nil); err != ErrEmptyIR {
		t.Fatalf("err = %v, want ErrEmptyIR", err)
	}
}

func TestFindOnsetStrict(t *testing.T) {
	x := []float64{0.01, 0.05, -0.06, 0.9}
	idx, ok := FindOnset(x, 0.05)
	if !ok || idx != 2 {
		t.Fatalf("FindOnset = %d,%v want 2,true", idx, ok)
	}
	if _, ok := FindOnset(x, 1); ok {
		t.Fatal("expected no crossing")
	}
}

func TestOnsetDetectorPeakRelative(t *testing.T) {
	d := OnsetDetector{Mode: ThresholdPeakRelative, Threshold: 0.1}
	x := []float64{0.001, 0.02, 0.1, 1.0, 0.3}
	idx, ok := d.Find(x)
	if !ok || idx != 2 {
		t.Fatalf("Find = %d,%v want 2,true", idx, ok)
	}
	if _, ok := d.Find(make([]float64, 4)); ok {
		t.Fatal("silent window must have no onset")
	}
}

func TestOnsetDetectorValidate(t *testing.T) {
	tests := []struct {
		d  OnsetDetector
		ok bool
	}{
		{OnsetDetector{Threshold: 0.05}, true},
		{OnsetDetector{Threshold: 0}, false},
		{OnsetDetector{Threshold: math.NaN()}, false},
		{OnsetDetector{Mode: ThresholdPeakRelative, Threshold: 1.5}, false},
		{OnsetDetector{Mode: ThresholdPeakRelative, Threshold: 0.5}, true},
	}
	for _, tt := range tests {
		err := tt.d.Validate()
		if tt.ok != (err == nil) {
			t.Errorf("Validate(%+v) = %v", tt.d, err)
		}
	}
}

func TestParseThresholdMode(t *testing.T) {
	if m, err := ParseThresholdMode(""); err != nil || m != ThresholdAbsolute {
		t.Fatalf("empty: %v %v", m, err)
	}
	if m, err := ParseThresholdMode("Peak-Relative"); err != nil || m != ThresholdPeakRelative {
		t.Fatalf("peak-relative: %v %v", m, err)
	}
	if _, err := ParseThresholdMode("noise-floor"); err == nil {
		t.Fatal("expected error")
	}
}

func TestOnsetCollector(t *testing.T) {
	var c OnsetCollector
	for _, idx := range []int{10, 12, 14} {
		c.Observe(idx, true)
	}
	c.Observe(0, false)

	var other OnsetCollector
	other.Observe(16, true)
	c.Merge(&other)

	s := c.Stats()
	if s.Count != 4 || s.NoCrossing != 1 {
		t.Fatalf("counts = %d/%d, want 4/1", s.Count, s.NoCrossing)
	}
	testutil.RequireNearlyEqual(t, "mean", s.Mean, 13, 1e-12)
	testutil.RequireNearlyEqual(t, "std", s.Std, math.Sqrt(5), 1e-12)
	if s.Min != 10 || s.Max != 16 {
		t.Fatalf("range = [%d,%d], want [10,16]", s.Min, s.Max)
	}
}

func TestOnsetCollectorEmpty(t *testing.T) {
	var c OnsetCollector
	s := c.Stats()
	if s.Count != 0 || !math.IsNaN(s.Mean) || !math.IsNaN(s.Std) {
		t.Fatalf("empty stats = %+v", s)
	}
}
